package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/regional-weather/internal/weather"
)

var validate = validator.New()

const (
	networkErrorTitle   = "Network Error"
	networkErrorMessage = "Fail to Request. please check Your Network"
)

// ActivityReporter exposes the network activity indicator.
type ActivityReporter interface {
	Visible() bool
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, activity ActivityReporter) {
	v1 := app.Group("/api/v1")

	v1.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"networkActivity": activity != nil && activity.Visible(),
			"refreshing":      service.Refreshing(),
		})
	})

	v1.Get("/regions", func(c *fiber.Ctx) error {
		unit, err := weather.ParseUnit(c.Query("unit"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{
			"regions": service.Summaries(unit),
		})
	})

	v1.Post("/regions", func(c *fiber.Ctx) error {
		var req addRegionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := req.check(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		unit, err := weather.ParseUnit(c.Query("unit"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := service.AddRegion(c.UserContext(), req.toNewRegion())
		if err != nil {
			return regionError(err)
		}

		body := fiber.Map{
			"index":  res.Index,
			"region": weather.Summarize(res.Index, res.Region, unit),
		}
		if res.RefreshErr != nil {
			body["warning"] = networkErrorTitle
		}
		return c.Status(fiber.StatusCreated).JSON(body)
	})

	v1.Post("/regions/refresh", func(c *fiber.Ctx) error {
		unit, err := weather.ParseUnit(c.Query("unit"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := service.Refresh(c.UserContext()); err != nil {
			return regionError(err)
		}
		return c.JSON(fiber.Map{
			"regions": service.Summaries(unit),
		})
	})

	v1.Get("/regions/:index", func(c *fiber.Ctx) error {
		index, err := parseIndex(c)
		if err != nil {
			return err
		}
		unit, err := weather.ParseUnit(c.Query("unit"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		detail, err := service.Detail(index, unit)
		if err != nil {
			return regionError(err)
		}
		return c.JSON(detail)
	})

	v1.Delete("/regions/:index", func(c *fiber.Ctx) error {
		index, err := parseIndex(c)
		if err != nil {
			return err
		}
		if _, err := service.DeleteRegion(c.UserContext(), index); err != nil {
			return regionError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// addRegionRequest is either a coordinate pair or a place query.
type addRegionRequest struct {
	Name      string   `json:"name" validate:"max=120"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	City      string   `json:"city" validate:"max=120"`
	State     string   `json:"state"`
	Country   string   `json:"country"`
}

func (r addRegionRequest) check() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	hasLat, hasLon := r.Latitude != nil, r.Longitude != nil
	switch {
	case hasLat != hasLon:
		return errors.New("latitude and longitude must be given together")
	case !hasLat && strings.TrimSpace(r.City) == "":
		return errors.New("either latitude/longitude or city is required")
	}
	return nil
}

func (r addRegionRequest) toNewRegion() weather.NewRegion {
	nr := weather.NewRegion{Name: r.Name}
	if r.Latitude != nil && r.Longitude != nil {
		nr.Coordinate = &weather.Coordinate{
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
		}
		return nr
	}
	nr.Query = &weather.PlaceQuery{
		City:    r.City,
		State:   r.State,
		Country: r.Country,
	}
	return nr
}

func parseIndex(c *fiber.Ctx) (int, error) {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil || index < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "index must be a non-negative integer")
	}
	return index, nil
}

// regionError maps service errors to HTTP errors. Network failures are
// reported with one generic message regardless of cause.
func regionError(err error) error {
	switch {
	case errors.Is(err, weather.ErrNetwork):
		return fiber.NewError(fiber.StatusBadGateway, networkErrorTitle+": "+networkErrorMessage)
	case errors.Is(err, weather.ErrRegionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, weather.ErrRefreshInProgress), errors.Is(err, weather.ErrRefreshSuperseded):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, weather.ErrPlaceNotFound):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, weather.ErrInvalidRegion):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrGeocoderUnavailable), errors.Is(err, weather.ErrClosed):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
