package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/arnavshah/duty-scheduler-go/internal/config"
	"github.com/arnavshah/duty-scheduler-go/internal/logger"
	"github.com/arnavshah/duty-scheduler-go/pkg/database"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidKeyFormat = errors.New("invalid key format")
	ErrInvalidSignature = errors.New("invalid signature")
)

var jwtAlgorithm = jwt.SigningMethodHS256

// PasswordCost is the bcrypt cost used for coordinator passwords.
var PasswordCost = 12

// TokenTTL is how long an admin token stays valid.
const TokenTTL = 24 * time.Hour

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service signs admin tokens and API keys with the configured secrets.
type Service struct {
	jwtSecret    []byte
	masterSecret []byte
}

func New(cfg config.AuthConfig) *Service {
	return &Service{jwtSecret: []byte(cfg.JWTSecret), masterSecret: []byte(cfg.APIMasterSecret)}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for a coordinator
func (s *Service) CreateToken(username string) (string, error) {
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(s.jwtSecret)
}

// VerifyToken verifies a JWT token
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateHMACKey creates a signed API key using HMAC-SHA256
func (s *Service) GenerateHMACKey(userID string) string {
	return userID + "." + s.sign(userID)
}

// VerifyHMACKey validates an HMAC-signed API key and returns its user id.
func (s *Service) VerifyHMACKey(key string) (string, error) {
	i := strings.LastIndex(key, ".")
	if i <= 0 || i == len(key)-1 {
		return "", ErrInvalidKeyFormat
	}
	userID, provided := key[:i], key[i+1:]
	if !hmac.Equal([]byte(provided), []byte(s.sign(userID))) {
		return "", ErrInvalidSignature
	}
	return userID, nil
}

func (s *Service) sign(userID string) string {
	h := hmac.New(sha256.New, s.masterSecret)
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}

// KeyPreview masks a key for listings, e.g. "ops...1f9c".
func KeyPreview(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

// TouchAPIKey fetches or creates the record of a verified key and stamps
// its last use.
func TouchAPIKey(db *gorm.DB, key, userID string) (*database.APIKey, error) {
	var apiKey database.APIKey
	err := db.Where(database.APIKey{Key: key}).Attrs(database.APIKey{
		Name:       userID,
		KeyPreview: KeyPreview(key),
		RateLimit:  10000,
	}).FirstOrCreate(&apiKey).Error
	if err != nil {
		return nil, err
	}
	now := time.Now()
	apiKey.LastUsed = &now
	if err := db.Model(&apiKey).Update("last_used", now).Error; err != nil {
		return nil, err
	}
	return &apiKey, nil
}

// EnsureAdminExists creates the configured coordinator when none exists.
func EnsureAdminExists(db *gorm.DB, username, password string, log logger.Logger) error {
	var count int64
	if err := db.Model(&database.Coordinator{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := db.Create(&database.Coordinator{Username: username, PasswordHash: hash}).Error; err != nil {
		return err
	}
	if log != nil {
		log.Infof("default coordinator created: %s", username)
	}
	return nil
}

// Authenticate checks a coordinator's credentials.
func Authenticate(db *gorm.DB, username, password string) (*database.Coordinator, bool) {
	var user database.Coordinator
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, false
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, false
	}
	return &user, true
}
