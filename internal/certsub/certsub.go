// Package certsub renders the optional certificate subpackage template that
// ships the UEFI signing certificates next to kernel module packages.
package certsub

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/sirupsen/logrus"
)

// CertDir is the fixed certificate directory scanned under the payload.
const CertDir = "etc/uefi/certs"

// Template placeholders.
const (
	namePlaceholder  = "@NAME@"
	certsPlaceholder = "@CERTS@"
)

// Render reads the subpackage template and substitutes the kernel module
// package basename and the certificates discovered under the payload.
func Render(templatePath, payloadDir, kmpBasename string) (string, error) {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return "", models.Errorf(models.ErrFileOp, "", "read certificate template: %v", err)
	}

	certs := scanCerts(payloadDir)
	if len(certs) == 0 {
		logrus.Warnf("Certificate subpackage requested but no certificates found under %s",
			filepath.Join(payloadDir, CertDir))
	}

	body := strings.ReplaceAll(string(data), namePlaceholder, kmpBasename)
	body = strings.ReplaceAll(body, certsPlaceholder, strings.Join(certs, " "))
	return body, nil
}

// scanCerts collects the certificate names under the payload certificate
// directory, extension stripped. Entries without the .crt suffix are
// reported and skipped.
func scanCerts(payloadDir string) []string {
	dir := filepath.Join(payloadDir, CertDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var certs []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".crt") {
			logrus.Warnf("Ignoring %s: not a .crt certificate", filepath.Join(dir, name))
			continue
		}
		certs = append(certs, strings.TrimSuffix(name, ".crt"))
	}
	sort.Strings(certs)
	return certs
}
