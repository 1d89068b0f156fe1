package models

// OrderGroupLink associates an order with its audience: a group for a
// teacher-placed booking, or a single student for an individual booking,
// never both. Every order has exactly one link row.
type OrderGroupLink struct {
	ID        uint  `gorm:"primarykey" json:"id"`
	OrderID   uint  `gorm:"not null;uniqueIndex;check:chk_link_target,(group_id IS NULL) <> (student_id IS NULL)" json:"order_id"`
	GroupID   *uint `gorm:"index" json:"group_id,omitempty"`
	StudentID *uint `gorm:"index" json:"student_id,omitempty"`

	// Relationships
	Order   Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Group   *Group   `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}
