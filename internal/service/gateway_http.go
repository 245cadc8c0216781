package service

import (
	"context"
	nethttp "net/http"

	"HotelGateway/internal/biz"

	"github.com/go-kratos/kratos/v2/transport/http"
)

// Operation names, used by middleware selectors and request logs.
const (
	OperationListHotels        = "/gateway.v1.Gateway/ListHotels"
	OperationCreateReservation = "/gateway.v1.Gateway/CreateReservation"
	OperationListReservations  = "/gateway.v1.Gateway/ListReservations"
	OperationGetReservation    = "/gateway.v1.Gateway/GetReservation"
	OperationCancelReservation = "/gateway.v1.Gateway/CancelReservation"
	OperationGetLoyalty        = "/gateway.v1.Gateway/GetLoyalty"
	OperationMe                = "/gateway.v1.Gateway/Me"
)

// RegisterGatewayHTTPServer mounts the gateway routes on s.
func RegisterGatewayHTTPServer(s *http.Server, srv *GatewayService) {
	r := s.Route("/")
	r.GET("/api/v1/hotels", listHotelsHandler(srv))
	r.POST("/api/v1/reservations", createReservationHandler(srv))
	r.GET("/api/v1/reservations", listReservationsHandler(srv))
	r.GET("/api/v1/reservations/{uid}", getReservationHandler(srv))
	r.DELETE("/api/v1/reservations/{uid}", cancelReservationHandler(srv))
	r.GET("/api/v1/loyalty", getLoyaltyHandler(srv))
	r.GET("/api/v1/me", meHandler(srv))
}

func listHotelsHandler(srv *GatewayService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ListHotelsRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationListHotels)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListHotels(ctx, req.(*ListHotelsRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func createReservationHandler(srv *GatewayService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in biz.CreateReservationRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationCreateReservation)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.CreateReservation(ctx, req.(*biz.CreateReservationRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func listReservationsHandler(srv *GatewayService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		http.SetOperation(ctx, OperationListReservations)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListReservations(ctx, req.(*Empty))
		})
		out, err := h(ctx, &Empty{})
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func getReservationHandler(srv *GatewayService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		in := ReservationRequest{ReservationUID: ctx.Vars().Get("uid")}
		http.SetOperation(ctx, OperationGetReservation)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetReservation(ctx, req.(*ReservationRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func cancelReservationHandler(srv *GatewayService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		in := ReservationRequest{ReservationUID: ctx.Vars().Get("uid")}
		http.SetOperation(ctx, OperationCancelReservation)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.CancelReservation(ctx, req.(*ReservationRequest))
		})
		if _, err := h(ctx, &in); err != nil {
			return err
		}
		ctx.Response().WriteHeader(nethttp.StatusNoContent)
		return nil
	}
}

func getLoyaltyHandler(srv *GatewayService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		http.SetOperation(ctx, OperationGetLoyalty)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetLoyalty(ctx, req.(*Empty))
		})
		out, err := h(ctx, &Empty{})
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func meHandler(srv *GatewayService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		http.SetOperation(ctx, OperationMe)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Me(ctx, req.(*Empty))
		})
		out, err := h(ctx, &Empty{})
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}
