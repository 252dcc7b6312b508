package models

import "time"

// Product represents a catalog item stored in the products table.
type Product struct {
	ID               uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name             string    `json:"name" gorm:"type:varchar(100);not null"`
	Price            float64   `json:"price" gorm:"not null"`
	Brand            string    `json:"brand" gorm:"type:varchar(100);not null"`
	ModelNumber      string    `json:"model_number" gorm:"type:varchar(100);not null"`
	Color            string    `json:"color" gorm:"type:varchar(50)"`
	Warranty         *int      `json:"warranty,omitempty"`     // months
	BatteryLife      *float64  `json:"battery_life,omitempty"` // hours
	Rating           *float64  `json:"rating,omitempty"`
	ManufacturedDate time.Time `json:"manufactured_date" gorm:"not null;index"`
}

// TableName pins the table name regardless of GORM naming strategy.
func (Product) TableName() string {
	return "products"
}

// ProductInput holds the user-editable fields of a Product submitted through the
// create and edit forms. It is never persisted directly.
type ProductInput struct {
	Name        string   `form:"name" validate:"required,max=100"`
	Price       float64  `form:"price" validate:"gt=0,lte=10000000"`
	Brand       string   `form:"brand" validate:"required,max=100"`
	ModelNumber string   `form:"modelNumber" validate:"required,max=100"`
	Color       string   `form:"color" validate:"omitempty,max=50"`
	Warranty    *int     `form:"warranty" validate:"omitempty,gte=0,lte=240"`
	BatteryLife *float64 `form:"batteryLife" validate:"omitempty,gte=0"`
	Rating      *float64 `form:"rating" validate:"omitempty,gte=0,lte=5"`
}

// InputFromProduct projects the business fields of p into a fresh ProductInput.
func InputFromProduct(p *Product) ProductInput {
	return ProductInput{
		Name:        p.Name,
		Price:       p.Price,
		Brand:       p.Brand,
		ModelNumber: p.ModelNumber,
		Color:       p.Color,
		Warranty:    copyPtr(p.Warranty),
		BatteryLife: copyPtr(p.BatteryLife),
		Rating:      copyPtr(p.Rating),
	}
}

// ApplyTo overwrites every business field of p with the input values.
// ID and ManufacturedDate are left untouched.
func (in ProductInput) ApplyTo(p *Product) {
	p.Name = in.Name
	p.Price = in.Price
	p.Brand = in.Brand
	p.ModelNumber = in.ModelNumber
	p.Color = in.Color
	p.Warranty = copyPtr(in.Warranty)
	p.BatteryLife = copyPtr(in.BatteryLife)
	p.Rating = copyPtr(in.Rating)
}

func copyPtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
