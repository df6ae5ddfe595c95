package httpapi

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var validate = validator.New()

// Controller is the set of user actions the routes expose.
type Controller interface {
	Snapshot() weather.State
	GetWeather(ctx context.Context)
	SearchCity(ctx context.Context, city string)
	UseCurrentLocation(ctx context.Context)
	SetUnit(ctx context.Context, unit string)
	SetDarkMode(ctx context.Context, enabled bool)
	SetNotifications(ctx context.Context, enabled bool)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. Every action
// responds with the rendered view.
func RegisterRoutes(app *fiber.App, ctrl Controller) {
	v1 := app.Group("/api/v1")

	render := func(c *fiber.Ctx) error {
		return c.JSON(weather.Render(ctrl.Snapshot()))
	}

	v1.Get("/view", render)

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		ctrl.GetWeather(c.UserContext())
		return render(c)
	})

	v1.Post("/location/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		// Blank names are the controller's to reject so the view shows the message.
		ctrl.SearchCity(c.UserContext(), req.City)
		return render(c)
	})

	v1.Post("/location/current", func(c *fiber.Ctx) error {
		ctrl.UseCurrentLocation(c.UserContext())
		return render(c)
	})

	prefs := v1.Group("/preferences")

	prefs.Put("/unit", func(c *fiber.Ctx) error {
		var req unitRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		ctrl.SetUnit(c.UserContext(), req.Unit)
		return render(c)
	})

	prefs.Put("/theme", func(c *fiber.Ctx) error {
		var req themeRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		ctrl.SetDarkMode(c.UserContext(), *req.Dark)
		return render(c)
	})

	prefs.Put("/notifications", func(c *fiber.Ctx) error {
		var req notificationsRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		ctrl.SetNotifications(c.UserContext(), *req.Enabled)
		return render(c)
	})
}

type searchRequest struct {
	City string `json:"city"`
}

type unitRequest struct {
	Unit string `json:"unit" validate:"required,oneof=metric imperial"`
}

type themeRequest struct {
	Dark *bool `json:"dark" validate:"required"`
}

type notificationsRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// ErrorHandler renders errors as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}
