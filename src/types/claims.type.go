package types

import "github.com/golang-jwt/jwt/v4"

type Claims struct {
	Role string `json:"role"`
	UID  string `json:"uid"`
	jwt.RegisteredClaims
}
