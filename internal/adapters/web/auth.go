package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"gstbilling/internal/core"
)

type principalKey struct{}

// Principal is the authenticated caller, resolved exactly once by RequireAuth
// and carried in the request context from then on.
type Principal struct {
	Kind       core.PrincipalKind
	ID         int
	BusinessID int
}

// principalFromContext returns the principal stored in ctx, or nil.
func principalFromContext(ctx context.Context) *Principal {
	v, _ := ctx.Value(principalKey{}).(*Principal)
	return v
}

// jwtClaims is the JWT payload struct used for signing and parsing.
type jwtClaims struct {
	Kind       string `json:"kind"`
	SubjectID  int    `json:"subject_id"`
	BusinessID int    `json:"business_id"`
	jwt.RegisteredClaims
}

// RequireAuth validates the bearer token (Authorization header, with an
// auth_token cookie fallback) and injects the Principal into the request
// context. Returns 401 if the token is absent or invalid.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, &Principal{
			Kind:       core.PrincipalKind(claims.Kind),
			ID:         claims.SubjectID,
			BusinessID: claims.BusinessID,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireKind gates a route group to the given principal kinds. It runs
// inside RequireAuth, so the principal is always present.
func (h *Handler) RequireKind(kinds ...core.PrincipalKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := principalFromContext(r.Context())
			if p == nil || !kindIn(p.Kind, kinds) {
				writeError(w, r, "insufficient privileges", "FORBIDDEN", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func kindIn(kind core.PrincipalKind, kinds []core.PrincipalKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// register handles POST /api/auth/register — creates a business account.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		GSTIN    string `json:"gstin"`
		State    string `json:"state"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		writeError(w, r, "name, email and a password of at least 8 characters are required",
			"BAD_REQUEST", http.StatusBadRequest)
		return
	}

	if _, err := h.store.GetBusinessByEmail(r.Context(), req.Email); err == nil {
		writeError(w, r, "email already registered", "CONFLICT", http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, "password hashing failed", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	business, err := h.store.CreateBusiness(r.Context(), &core.Business{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		GSTIN:        req.GSTIN,
		State:        req.State,
	})
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, business)
}

// login handles POST /api/auth/login — verifies credentials and issues a JWT.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	business, err := h.store.GetBusinessByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, "invalid email or password", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(business.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, r, "invalid email or password", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}

	claims := &jwtClaims{
		Kind:       string(core.PrincipalAdmin),
		SubjectID:  business.ID,
		BusinessID: business.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
	if err != nil {
		writeError(w, r, "token generation failed", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   86400,
	})

	type loginResponse struct {
		Token        string `json:"token"`
		BusinessID   int    `json:"business_id"`
		BusinessName string `json:"business_name"`
	}
	writeJSON(w, loginResponse{Token: signed, BusinessID: business.ID, BusinessName: business.Name})
}

// customerToken handles POST /api/customers/{id}/token — lets an admin issue
// a restricted order-placement token for one of their customers.
func (h *Handler) customerToken(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	customer, ok := h.customerForBusiness(w, r, id)
	if !ok {
		return
	}

	claims := &jwtClaims{
		Kind:       string(core.PrincipalCustomer),
		SubjectID:  customer.ID,
		BusinessID: customer.BusinessID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
	if err != nil {
		writeError(w, r, "token generation failed", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	type tokenResponse struct {
		Token      string `json:"token"`
		CustomerID int    `json:"customer_id"`
	}
	writeJSONStatus(w, http.StatusCreated, tokenResponse{Token: signed, CustomerID: customer.ID})
}

// logout handles POST /api/auth/logout — clears the auth cookie.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// me handles GET /api/auth/me — returns the authenticated business profile.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	if p == nil {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}

	business, err := h.store.GetBusiness(r.Context(), p.BusinessID)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}

	type meResponse struct {
		Kind       string `json:"kind"`
		BusinessID int    `json:"business_id"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		GSTIN      string `json:"gstin"`
		State      string `json:"state"`
	}
	writeJSON(w, meResponse{
		Kind:       string(p.Kind),
		BusinessID: business.ID,
		Name:       business.Name,
		Email:      business.Email,
		GSTIN:      business.GSTIN,
		State:      business.State,
	})
}
