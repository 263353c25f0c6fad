package certsub

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cert-subpackage.in")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	payload := t.TempDir()
	certDir := filepath.Join(payload, CertDir)
	require.NoError(t, os.MkdirAll(certDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(certDir, "suse.crt"), []byte("cert"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(certDir, "obs.crt"), []byte("cert"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(certDir, "README"), []byte("not a cert"), 0644))

	template := writeTemplate(t, "%package -n @NAME@-kmp-ueficert\nCerts: @CERTS@\n")
	body, err := Render(template, payload, "foo")
	require.NoError(t, err)

	assert.Contains(t, body, "%package -n foo-kmp-ueficert")
	assert.Contains(t, body, "Certs: obs suse")
	assert.NotContains(t, body, "README")
}

func TestRenderWithoutCertDir(t *testing.T) {
	template := writeTemplate(t, "Certs: @CERTS@\n")
	body, err := Render(template, t.TempDir(), "foo")
	require.NoError(t, err)
	assert.Equal(t, "Certs: \n", body)
}

func TestRenderMissingTemplate(t *testing.T) {
	_, err := Render(filepath.Join(t.TempDir(), "absent.in"), t.TempDir(), "foo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read certificate template")
}
