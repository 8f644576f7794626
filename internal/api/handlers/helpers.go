package handlers

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"finwiz/internal/dto"
	"finwiz/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodes the JSON body into dst and checks its required fields.
// Any problem is reported as a *dto.ValidationError.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return decodeError(err)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}

		fields := make([]dto.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, validationFieldError(fe))
		}
		return &dto.ValidationError{Fields: fields}
	}

	return nil
}

func validationFieldError(fe validator.FieldError) dto.FieldError {
	loc := []string{"body", fe.Field()}

	switch fe.Tag() {
	case "required":
		return dto.FieldError{Loc: loc, Msg: "field required", Type: "value_error.missing"}
	default:
		return dto.FieldError{Loc: loc, Msg: "failed on the '" + fe.Tag() + "' rule", Type: "value_error." + fe.Tag()}
	}
}

func decodeError(err error) *dto.ValidationError {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &typeErr):
		loc := []string{"body"}
		if typeErr.Field != "" {
			loc = append(loc, strings.Split(typeErr.Field, ".")...)
		}
		msg := "value is not a valid " + typeErr.Type.String()
		if typeErr.Type == reflect.TypeOf(models.Date{}) {
			msg = "invalid date format, expected YYYY-MM-DD"
		}
		return &dto.ValidationError{Fields: []dto.FieldError{{
			Loc:  loc,
			Msg:  msg,
			Type: "type_error",
		}}}
	case errors.As(err, &syntaxErr):
		return &dto.ValidationError{Fields: []dto.FieldError{{
			Loc:  []string{"body"},
			Msg:  "invalid JSON: " + syntaxErr.Error(),
			Type: "value_error.jsondecode",
		}}}
	case errors.Is(err, fiber.ErrUnprocessableEntity):
		return &dto.ValidationError{Fields: []dto.FieldError{{
			Loc:  []string{"body"},
			Msg:  "request body must be JSON",
			Type: "type_error.content_type",
		}}}
	default:
		return &dto.ValidationError{Fields: []dto.FieldError{{
			Loc:  []string{"body"},
			Msg:  err.Error(),
			Type: "value_error",
		}}}
	}
}

// respondError writes err in the API's error shape: 422 with field details
// for validation problems, 500 with a detail message otherwise.
func respondError(c *fiber.Ctx, logger *zap.Logger, msg string, err error) error {
	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		logger.Info("Rejected request body",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(verr.Response())
	}

	logger.Error(msg,
		zap.String("request_id", requestID(c)),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Detail: err.Error(),
	})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
