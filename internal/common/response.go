package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// FieldErrors mirrors the join form's error payload: every field is present,
// the failing one carries its message, the rest stay null.
type FieldErrors struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	Pseudonym *string `json:"pseudonym"`
	Country   *string `json:"country"`
}

type FieldErrorResponse struct {
	Errors FieldErrors `json:"errors"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithDomainError picks between the field-level validation shape and
// the generic error shape.
func RespondWithDomainError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		fe := FieldErrors{}
		switch vErr.Field {
		case "email":
			fe.Email = &vErr.Message
		case "password":
			fe.Password = &vErr.Message
		case "firstname":
			fe.Firstname = &vErr.Message
		case "lastname":
			fe.Lastname = &vErr.Message
		case "pseudonym":
			fe.Pseudonym = &vErr.Message
		case "country":
			fe.Country = &vErr.Message
		}
		RespondWithJSON(w, http.StatusBadRequest, FieldErrorResponse{Errors: fe})
		return
	}
	RespondWithError(w, HTTPStatusFromError(err), err.Error())
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
