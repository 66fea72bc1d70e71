package store

// MaterialRecord is one row of the local material catalog.
type MaterialRecord struct {
	ID       int64
	Name     string
	UnitCost float64
	Unit     string
	Category string
}
