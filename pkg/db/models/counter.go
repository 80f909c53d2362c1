package models

// Counter backs the order-id sequence. A single row named "orders" is
// incremented with an atomic UPDATE ... RETURNING; every create gets a
// distinct, strictly increasing value.
type Counter struct {
	Name          string `gorm:"column:name;primaryKey" json:"name"`
	SequenceValue int64  `gorm:"column:sequence_value;not null;default:0" json:"sequenceValue"`
}

// TableName pins the legacy table name.
func (Counter) TableName() string {
	return "counters"
}
