package handlers

import (
    "errors"
    "fmt"
    "log"
    "net/http"

    "supermarket-pos-api/middleware"
    "supermarket-pos-api/models"
    "supermarket-pos-api/services/auth"
    "supermarket-pos-api/utils"
)

type AuthHandler struct {
    jwtService *auth.JWTService
}

func NewAuthHandler(jwtService *auth.JWTService) *AuthHandler {
    return &AuthHandler{jwtService: jwtService}
}

// Login authenticates a cashier and hands back a bearer token good for
// one register shift.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
    var req models.LoginRequest
    if err := decodeJSONBody(r, &req); err != nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
        return
    }
    if req.Username == "" || req.Password == "" {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Username and password are required")
        return
    }

    resp, err := h.jwtService.Authenticate(req.Username, req.Password)
    if err != nil {
        switch {
        case errors.Is(err, auth.ErrInvalidCredentials):
            utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
        case errors.Is(err, auth.ErrUserInactive):
            utils.SendErrorResponse(w, http.StatusForbidden, "Cashier account is inactive")
        default:
            log.Printf("Error authenticating %s: %v", req.Username, err)
            utils.SendErrorResponse(w, http.StatusInternalServerError, "Authentication failed")
        }
        return
    }

    log.Printf("Cashier %s logged in", req.Username)
    utils.SendSuccessResponse(w, models.APIResponse{
        Status:  "success",
        Message: "Login successful",
        Data:    resp,
    })
}

// Me returns the authenticated cashier from the request context.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
    user := middleware.GetUserFromContext(r.Context())
    if user == nil {
        utils.SendErrorResponse(w, http.StatusUnauthorized, "Not authenticated")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status: "success",
        Data:   user,
    })
}
