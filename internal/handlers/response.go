package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Wajib diisi"
	case "email":
		return "Format email tidak valid"
	case "url":
		return "Format URL tidak valid"
	case "max":
		return "Maksimal " + fe.Param() + " karakter"
	case "min":
		return "Minimal " + fe.Param()
	case "gt":
		return "Harus lebih dari " + fe.Param()
	case "gte":
		return "Tidak boleh kurang dari " + fe.Param()
	case "oneof":
		return "Pilihan tidak valid"
	case "datetime":
		return "Format waktu harus " + fe.Param()
	default:
		return "Tidak valid"
	}
}

// check runs the validate tags on dst and converts failures to a VALIDATION_ERROR.
func check(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.CodeValidation, err, "Validation error")
	}
	out := apperr.New(apperr.CodeValidation, "Validation error")
	for _, fe := range verrs {
		field := fe.Namespace()
		// drop the struct name prefix
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		out.WithField(field, fieldMessage(fe))
	}
	return out
}

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Wrap(apperr.CodeValidation, err, "Format data tidak valid")
	}
	return check(dst)
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.New(apperr.CodeNotFound, "Data tidak ditemukan")
	}
	return id, nil
}

func queryID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Validation(name, "ID tidak valid")
	}
	return &id, nil
}

func ok(c *fiber.Ctx, message string, data any) error {
	body := fiber.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(body)
}

func created(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}
