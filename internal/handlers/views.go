package handlers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"thestore/internal/models"
	"thestore/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Template names rendered by the handlers.
const (
	viewHome        = "index"
	viewError       = "error"
	viewProductList = "products/index"
	viewProductNew  = "products/create"
	viewProductEdit = "products/edit"
	viewProductShow = "products/show"
)

type homeView struct {
	Title string
}

type errorView struct {
	Title   string
	Status  int
	Message string
}

type productListView struct {
	Title    string
	Products []models.Product
}

type productDetailView struct {
	Title   string
	Product *models.Product
}

// productFormView backs both the create and the edit page. Product is nil on
// the create page.
type productFormView struct {
	Title   string
	Action  string
	Product *models.Product
	Form    ProductForm
	Errors  validation.Errors
}

// ProductForm holds the raw submitted form values so an invalid submission can
// be redisplayed exactly as typed.
type ProductForm struct {
	Name        string
	Price       string
	Brand       string
	ModelNumber string
	Color       string
	Warranty    string
	BatteryLife string
	Rating      string
}

func bindProductForm(c *fiber.Ctx) ProductForm {
	value := func(key string) string {
		return strings.TrimSpace(c.FormValue(key))
	}
	return ProductForm{
		Name:        value("name"),
		Price:       value("price"),
		Brand:       value("brand"),
		ModelNumber: value("modelNumber"),
		Color:       value("color"),
		Warranty:    value("warranty"),
		BatteryLife: value("batteryLife"),
		Rating:      value("rating"),
	}
}

func formFromInput(in models.ProductInput) ProductForm {
	f := ProductForm{
		Name:        in.Name,
		Price:       formatFloat(in.Price),
		Brand:       in.Brand,
		ModelNumber: in.ModelNumber,
		Color:       in.Color,
	}
	if in.Warranty != nil {
		f.Warranty = strconv.Itoa(*in.Warranty)
	}
	if in.BatteryLife != nil {
		f.BatteryLife = formatFloat(*in.BatteryLife)
	}
	if in.Rating != nil {
		f.Rating = formatFloat(*in.Rating)
	}
	return f
}

// toInput converts the raw values into a typed input. Fields that could not be
// converted, and a blank price, are reported in the returned errors and left at
// their zero value.
func (f ProductForm) toInput() (models.ProductInput, validation.Errors) {
	var errs validation.Errors
	in := models.ProductInput{
		Name:        f.Name,
		Brand:       f.Brand,
		ModelNumber: f.ModelNumber,
		Color:       f.Color,
	}

	switch v, ok := parseFloat(f.Price); {
	case f.Price == "":
		errs.Add("price", "is required")
	case ok:
		in.Price = v
	default:
		errs.Add("price", "must be a number")
	}
	if f.Warranty != "" {
		if v, err := strconv.Atoi(f.Warranty); err == nil {
			in.Warranty = &v
		} else {
			errs.Add("warranty", "must be a whole number")
		}
	}
	if f.BatteryLife != "" {
		if v, ok := parseFloat(f.BatteryLife); ok {
			in.BatteryLife = &v
		} else {
			errs.Add("batteryLife", "must be a number")
		}
	}
	if f.Rating != "" {
		if v, ok := parseFloat(f.Rating); ok {
			in.Rating = &v
		} else {
			errs.Add("rating", "must be a number")
		}
	}
	return in, errs
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TemplateFuncs are the helpers available to every template.
func TemplateFuncs() map[string]interface{} {
	return map[string]interface{}{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("2006-01-02 15:04:05 MST")
		},
		"price": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
		"optional": func(v interface{}) string {
			switch p := v.(type) {
			case *int:
				if p != nil {
					return strconv.Itoa(*p)
				}
			case *float64:
				if p != nil {
					return formatFloat(*p)
				}
			}
			return "-"
		},
	}
}
