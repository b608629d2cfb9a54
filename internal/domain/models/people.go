package models

// Customer is an optional buyer record attached to sales by name.
type Customer struct {
	Name    string `bson:"name" json:"name" binding:"required"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
	Note    string `bson:"note,omitempty" json:"note,omitempty"`
}

// User is a cashier/manager/admin account.
type User struct {
	Username    string `bson:"username" json:"username" binding:"required"`
	DisplayName string `bson:"display_name" json:"display_name"`
	Role        string `bson:"role" json:"role" binding:"omitempty,oneof=cashier manager admin"`
	IsActive    bool   `bson:"is_active" json:"is_active"`
}
