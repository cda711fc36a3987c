// internal/license/keygen.go
package license

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/keygen-sh/keygen-go/v3"
	"go.uber.org/zap"
)

// ErrLicenseExpired is returned when Keygen reports the license as expired.
var ErrLicenseExpired = errors.New("license has expired")

// KeygenValidator handles license validation using Keygen.sh
type KeygenValidator struct {
	logger    *zap.Logger
	accountID string
	productID string
}

// NewKeygenValidator configures the Keygen client for the account and product.
func NewKeygenValidator(accountID, productToken, productID string, logger *zap.Logger) *KeygenValidator {
	keygen.Account = accountID
	keygen.Product = productID
	keygen.Token = productToken

	return &KeygenValidator{
		logger:    logger.Named("license"),
		accountID: accountID,
		productID: productID,
	}
}

// ValidateLicense validates licenseKey for this machine and activates the machine when needed.
func (kv *KeygenValidator) ValidateLicense(ctx context.Context, licenseKey string) error {
	kv.logger.Info("Validating license", zap.String("key", MaskKey(licenseKey)))

	fingerprint, err := Fingerprint()
	if err != nil {
		return fmt.Errorf("failed to generate machine fingerprint: %w", err)
	}

	keygen.LicenseKey = licenseKey

	license, err := keygen.Validate(ctx, fingerprint)
	switch {
	case errors.Is(err, keygen.ErrLicenseNotActivated):
		kv.logger.Info("License not activated, attempting activation")
		machine, activateErr := license.Activate(ctx, fingerprint)
		if activateErr != nil {
			return fmt.Errorf("failed to activate license: %w", activateErr)
		}
		kv.logger.Info("License activated successfully",
			zap.String("machine_id", machine.ID),
			zap.String("fingerprint", fingerprint),
		)

	case errors.Is(err, keygen.ErrLicenseExpired):
		return ErrLicenseExpired

	case err != nil:
		return fmt.Errorf("license validation failed: %w", err)
	}

	if license == nil {
		return errors.New("license not found")
	}

	kv.logger.Info("License validated", zap.String("license_id", license.ID))
	return nil
}

// Fingerprint derives a stable machine id from the hostname, hardware addresses and OS.
func Fingerprint() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}

	interfaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	var macAddresses []string
	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		macAddresses = append(macAddresses, iface.HardwareAddr.String())
	}
	sort.Strings(macAddresses)

	data := fmt.Sprintf("%s-%s-%s", hostname, strings.Join(macAddresses, ","), runtime.GOOS)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash), nil
}

// MaskKey keeps the first 8 characters of a license key.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:8] + "..."
}
