package utils

import (
	"net/http"

	"tattootime/globals"
)

func GetUserIDFromRequest(r *http.Request) string {
	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}

func GetRolesFromRequest(r *http.Request) []string {
	roles, ok := r.Context().Value(globals.RolesKey).([]string)
	if !ok {
		return nil
	}
	return roles
}

func IsAdmin(r *http.Request) bool {
	for _, role := range GetRolesFromRequest(r) {
		if role == "admin" {
			return true
		}
	}
	return false
}
