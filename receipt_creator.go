package main

import (
	"crypto/rsa"
	"os"
	"time"

	"go-scan-induction/models"

	"github.com/golang-jwt/jwt/v4"
)

// ReceiptCreator signs the record emitted on a verified induction so the
// persistence layer can prove where it came from.
type ReceiptCreator interface {
	CreateReceipt(record models.InductionRecord) (jwt string, err error)
}

func NewRsaReceiptCreator(privateKeyPath string, issuer string) (*DefaultReceiptCreator, error) {
	keyBytes, err := os.ReadFile(privateKeyPath)

	if err != nil {
		return nil, err
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyBytes)

	if err != nil {
		return nil, err
	}

	return &DefaultReceiptCreator{
		issuer:     issuer,
		privateKey: privateKey,
	}, nil
}

type DefaultReceiptCreator struct {
	privateKey *rsa.PrivateKey
	issuer     string
}

const ReceiptValidity = 24 * time.Hour

func (rc *DefaultReceiptCreator) CreateReceipt(record models.InductionRecord) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":         rc.issuer,
		"iat":         now.Unix(),
		"exp":         now.Add(ReceiptValidity).Unix(),
		"identifier":  record.Identifier,
		"kind":        record.Kind,
		"verified_at": record.VerifiedAt.UTC().Format(time.RFC3339),
	}

	if record.Result != nil {
		claims["class"] = record.Result.Class
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(rc.privateKey)
}
