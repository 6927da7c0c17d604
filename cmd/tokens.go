package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/labstack/echo/v4"
)

// seatClaims is who a request was made by: the holder of a seat in a match.
type seatClaims struct {
	MatchID string
	Seat    int
	Nick    string
}

// issueToken signs the seat a player got when joining. Moves are only accepted with it.
func (s *server) issueToken(c seatClaims) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"match": c.MatchID,
		"seat":  c.Seat,
		"nick":  c.Nick,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	})
	return t.SignedString(s.secret)
}

func (s *server) parseToken(raw string) (seatClaims, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return seatClaims{}, err
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok || !t.Valid {
		return seatClaims{}, fmt.Errorf("invalid token")
	}

	var c seatClaims
	seat, ok := claims["seat"].(float64)
	if !ok {
		return seatClaims{}, fmt.Errorf("token has no seat")
	}
	c.Seat = int(seat)
	if c.MatchID, ok = claims["match"].(string); !ok {
		return seatClaims{}, fmt.Errorf("token has no match")
	}
	c.Nick, _ = claims["nick"].(string)
	return c, nil
}

// seatFor reads the bearer token of the request.
func (s *server) seatFor(c echo.Context) (seatClaims, error) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	raw := strings.TrimPrefix(h, "Bearer ")
	if raw == "" || raw == h {
		return seatClaims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing seat token")
	}
	claims, err := s.parseToken(raw)
	if err != nil {
		return seatClaims{}, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return claims, nil
}
