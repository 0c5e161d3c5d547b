package auth

import (
    "crypto/sha256"
    "database/sql"
    "encoding/hex"
    "errors"
    "fmt"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "supermarket-pos-api/database"
    "supermarket-pos-api/models"
)

const AccessTokenDuration = 12 * time.Hour // one register shift

var (
    ErrInvalidCredentials = errors.New("invalid username or password")
    ErrUserInactive       = errors.New("cashier account inactive")
    ErrTokenExpired       = errors.New("token expired")
    ErrInvalidToken       = errors.New("invalid token")
)

type JWTService struct {
    secretKey []byte
    issuer    string
    db        *database.Connection
}

type Claims struct {
    Username string `json:"username"`
    Email    string `json:"email"`
    IsAdmin  bool   `json:"is_admin"`
    jwt.RegisteredClaims
}

func NewJWTService(secretKey, issuer string, db *database.Connection) *JWTService {
    return &JWTService{
        secretKey: []byte(secretKey),
        issuer:    issuer,
        db:        db,
    }
}

// Authenticate checks the cashier credentials and issues an access token.
func (j *JWTService) Authenticate(username, password string) (*models.AuthResponse, error) {
    hasher := sha256.New()
    hasher.Write([]byte(password))
    hashedPassword := hex.EncodeToString(hasher.Sum(nil))

    var email string
    var isAdmin, isActive bool

    query := `
        SELECT email, is_admin, is_active
        FROM cashiers
        WHERE username = ? AND password_hash = ?
    `
    err := j.db.GetDB().QueryRow(query, username, hashedPassword).Scan(&email, &isAdmin, &isActive)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrInvalidCredentials
        }
        return nil, fmt.Errorf("error querying cashier: %v", err)
    }

    if !isActive {
        return nil, ErrUserInactive
    }

    expiresAt := time.Now().Add(AccessTokenDuration)
    claims := Claims{
        Username: username,
        Email:    email,
        IsAdmin:  isAdmin,
        RegisteredClaims: jwt.RegisteredClaims{
            Issuer:    j.issuer,
            Subject:   username,
            ExpiresAt: jwt.NewNumericDate(expiresAt),
            IssuedAt:  jwt.NewNumericDate(time.Now()),
        },
    }

    token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := token.SignedString(j.secretKey)
    if err != nil {
        return nil, fmt.Errorf("error signing token: %v", err)
    }

    return &models.AuthResponse{
        AccessToken: signed,
        ExpiresAt:   expiresAt,
        Username:    username,
        IsAdmin:     isAdmin,
    }, nil
}

func (j *JWTService) ValidateToken(tokenString string) (*models.AuthUser, error) {
    token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
        if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return j.secretKey, nil
    })
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return nil, ErrTokenExpired
        }
        return nil, ErrInvalidToken
    }

    claims, ok := token.Claims.(*Claims)
    if !ok || !token.Valid {
        return nil, ErrInvalidToken
    }

    return &models.AuthUser{
        Username: claims.Username,
        Email:    claims.Email,
        IsAdmin:  claims.IsAdmin,
    }, nil
}
