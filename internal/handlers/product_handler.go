package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"thestore/internal/models"
	"thestore/internal/repositories"
	"thestore/internal/services"
	"thestore/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const productListPath = "/products"

// ProductHandler handles the HTML pages for browsing and editing products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validation.Validator
	log      *logrus.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validation.New(),
		log:      logger,
	}
}

// RegisterRoutes registers the product routes with the Fiber router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleListProducts)
	router.Get("/create", h.HandleShowCreateForm)
	router.Post("/create", h.HandleCreateProduct)
	router.Get("/show", h.HandleShowProduct)
	router.Get("/edit", h.HandleShowEditForm)
	router.Post("/edit", h.HandleEditProduct)
	router.Get("/delete", h.HandleDeleteProduct)
}

// HandleListProducts renders every product, newest first.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return fmt.Errorf("could not list products: %w", err)
	}
	return c.Render(viewProductList, productListView{
		Title:    "Products",
		Products: products,
	})
}

// HandleShowCreateForm renders an empty create form.
func (h *ProductHandler) HandleShowCreateForm(c *fiber.Ctx) error {
	return c.Render(viewProductNew, productFormView{
		Title:  "New product",
		Action: "/create",
	})
}

// HandleCreateProduct validates the submitted form and stores a new product.
// Repository failures are returned to the app error handler.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	form := bindProductForm(c)
	input, errs := h.parseAndValidate(form)
	if errs.Any() {
		h.entry(c).WithField("errors", errs.Error()).Debug("Create form rejected")
		return c.Status(fiber.StatusUnprocessableEntity).Render(viewProductNew, productFormView{
			Title:  "New product",
			Action: "/create",
			Form:   form,
			Errors: errs,
		})
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return err
	}

	h.entry(c).WithField("product_id", product.ID).Info("Product created")
	return c.Redirect(productListPath, fiber.StatusSeeOther)
}

// HandleShowProduct renders the details of a product, or goes back to the list
// when it cannot be found.
func (h *ProductHandler) HandleShowProduct(c *fiber.Ctx) error {
	product, ok := h.lookup(c)
	if !ok {
		return c.Redirect(productListPath, fiber.StatusSeeOther)
	}
	return c.Render(viewProductShow, productDetailView{
		Title:   product.Name,
		Product: product,
	})
}

// HandleShowEditForm renders the edit form prefilled from the stored product.
func (h *ProductHandler) HandleShowEditForm(c *fiber.Ctx) error {
	product, ok := h.lookup(c)
	if !ok {
		return c.Redirect(productListPath, fiber.StatusSeeOther)
	}
	return c.Render(viewProductEdit, editView(product, formFromInput(models.InputFromProduct(product)), nil))
}

// HandleEditProduct validates the submitted form and overwrites the product.
// An unknown product sends the user back to the list.
func (h *ProductHandler) HandleEditProduct(c *fiber.Ctx) error {
	product, ok := h.lookup(c)
	if !ok {
		return c.Redirect(productListPath, fiber.StatusSeeOther)
	}

	form := bindProductForm(c)
	input, errs := h.parseAndValidate(form)
	if errs.Any() {
		h.entry(c).WithFields(logrus.Fields{
			"product_id": product.ID,
			"errors":     errs.Error(),
		}).Debug("Edit form rejected")
		return c.Status(fiber.StatusUnprocessableEntity).Render(viewProductEdit, editView(product, form, errs))
	}

	if err := h.service.UpdateProduct(c.UserContext(), product, input); err != nil {
		entry := h.entry(c).WithError(err).WithField("product_id", product.ID)
		if errors.Is(err, repositories.ErrProductNotFound) {
			entry.Warn("Product removed before the edit was saved")
			return c.Redirect(productListPath, fiber.StatusSeeOther)
		}
		entry.Error("Failed to update product")
		var formErrs validation.Errors
		formErrs.Add("", "The product could not be saved. Please try again.")
		return c.Status(fiber.StatusInternalServerError).Render(viewProductEdit, editView(product, form, formErrs))
	}

	h.entry(c).WithField("product_id", product.ID).Info("Product updated")
	return c.Redirect(productListPath, fiber.StatusSeeOther)
}

// HandleDeleteProduct removes a product. Failures are logged and the user is
// always sent back to the list.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		h.entry(c).WithError(err).Warn("Delete requested with invalid product id")
		return c.Redirect(productListPath, fiber.StatusSeeOther)
	}

	entry := h.entry(c).WithField("product_id", id)
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			entry.WithError(err).Warn("Delete requested for unknown product")
		} else {
			entry.WithError(err).Error("Failed to delete product")
		}
		return c.Redirect(productListPath, fiber.StatusSeeOther)
	}

	entry.Info("Product deleted")
	return c.Redirect(productListPath, fiber.StatusSeeOther)
}

// lookup resolves the id parameter to a stored product. Invalid ids, missing
// products and repository faults are logged and reported as not found.
func (h *ProductHandler) lookup(c *fiber.Ctx) (*models.Product, bool) {
	id, err := productID(c)
	if err != nil {
		h.entry(c).WithError(err).Warn("Invalid product id")
		return nil, false
	}

	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		entry := h.entry(c).WithError(err).WithField("product_id", id)
		if errors.Is(err, repositories.ErrProductNotFound) {
			entry.Warn("Product not found")
		} else {
			entry.Error("Failed to look up product")
		}
		return nil, false
	}
	return product, true
}

func (h *ProductHandler) parseAndValidate(form ProductForm) (models.ProductInput, validation.Errors) {
	input, errs := form.toInput()
	skip := make([]string, 0, len(errs))
	for _, fe := range errs {
		skip = append(skip, fe.Field)
	}
	errs = append(errs, h.validate.Struct(input, skip...)...)
	return input, errs
}

func (h *ProductHandler) entry(c *fiber.Ctx) *logrus.Entry {
	return h.log.WithFields(logrus.Fields{
		"request_id": c.Locals("requestid"),
		"method":     c.Method(),
		"path":       c.Path(),
	})
}

func editView(product *models.Product, form ProductForm, errs validation.Errors) productFormView {
	return productFormView{
		Title:   "Edit " + product.Name,
		Action:  fmt.Sprintf("/edit?id=%d", product.ID),
		Product: product,
		Form:    form,
		Errors:  errs,
	}
}

// productID reads the id from the query string, falling back to the form body.
func productID(c *fiber.Ctx) (uint, error) {
	raw := c.Query("id")
	if raw == "" {
		raw = c.FormValue("id")
	}
	if raw == "" {
		return 0, errors.New("missing id parameter")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}
