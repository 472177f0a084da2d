package main

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/docupdate"
)

const testPDF = "%PDF-1.7\ntrailer\n<< /ID [<4142><4344>] >>\n%%EOF\n"

func writeTemp(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func writeKeys(t *testing.T, dir string) (ed25519.PublicKey, string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	keyPath := writeTemp(t, dir, "key.pem", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
	return pub, keyPath
}

func metadataYAML(repo string, pub ed25519.PublicKey) string {
	der, _ := x509.MarshalPKIXPublicKey(pub)
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	indented := "    " + strings.ReplaceAll(strings.TrimSpace(string(keyPEM)), "\n", "\n    ")
	return "Repo: " + repo + "\nAddressMode: DocumentID\nUpdateType: Incremental\nIntegrity:\n  CertDataType: Ed25519\n  PreSharedKey: |\n" + indented + "\n"
}

func TestSignAndFetch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pub, keyPath := writeKeys(t, dir)
	body := []byte("4 0 obj\n<<>>\nendobj\n")
	bodyPath := writeTemp(t, dir, "update.bin", body)

	var signOut bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"sign", "-k", keyPath, "-m", "rev 2", bodyPath}, &signOut, &bytes.Buffer{}))
	token := strings.TrimSpace(signOut.String())
	require.True(t, strings.HasPrefix(token, "v4.public."))

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/docId/QUI/Q0Q" {
			nethttp.NotFound(w, r)
			return
		}
		w.Header().Set(docupdate.DefaultTokenHeader, token)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)

	docPath := writeTemp(t, dir, "doc.pdf", []byte(testPDF))
	metaPath := writeTemp(t, dir, "doc.yaml", []byte(metadataYAML(server.URL, pub)))

	var urlOut bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"url", "--metadata", metaPath, docPath}, &urlOut, &bytes.Buffer{}))
	assert.Equal(t, server.URL+"/docId/QUI/Q0Q\n", urlOut.String())

	outPath := filepath.Join(dir, "out.pdf")
	require.NoError(t, run(context.Background(),
		[]string{"fetch", "--metadata", metaPath, "-o", outPath, "--log-level", "debug", docPath},
		&bytes.Buffer{}, &bytes.Buffer{}))
	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, testPDF+string(body), string(got))
}

func TestFetchFailureLeavesDocumentUntouched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pub, _ := writeKeys(t, dir)
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.Header().Set(docupdate.DefaultTokenHeader, "v4.public.AAAA")
		_, _ = w.Write([]byte("evil"))
	}))
	t.Cleanup(server.Close)

	docPath := writeTemp(t, dir, "doc.pdf", []byte(testPDF))
	metaPath := writeTemp(t, dir, "doc.yaml", []byte(metadataYAML(server.URL, pub)))

	err := run(context.Background(), []string{"fetch", "--metadata", metaPath, docPath}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)

	got, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Equal(t, testPDF, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temp output may be left behind")
}

func TestURLWithExplicitIDs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	docPath := writeTemp(t, dir, "doc.bin", []byte("not a pdf"))
	metaPath := writeTemp(t, dir, "doc.yaml", []byte("Repo: https://r.example\nAddressMode: DocumentID\nUpdateType: Incremental\n"))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(),
		[]string{"url", "--metadata", metaPath, "--id", "4142", "--id", "4344", docPath}, &out, &bytes.Buffer{}))
	assert.Equal(t, "https://r.example/docId/QUI/Q0Q\n", out.String())
}

func TestRunUsageErrors(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	require.NoError(t, run(context.Background(), nil, &bytes.Buffer{}, &stderr))
	assert.Contains(t, stderr.String(), "usage: docupdate")

	require.Error(t, run(context.Background(), []string{"bogus"}, &bytes.Buffer{}, &bytes.Buffer{}))
	require.Error(t, run(context.Background(), []string{"url"}, &bytes.Buffer{}, &bytes.Buffer{}))
	require.Error(t, run(context.Background(), []string{"sign", "file"}, &bytes.Buffer{}, &bytes.Buffer{}))
	require.Error(t, run(context.Background(), []string{"fetch", "--log-level", "loud", "x"}, &bytes.Buffer{}, &bytes.Buffer{}))
}

func TestSplitHeader(t *testing.T) {
	t.Parallel()

	k, v, err := splitHeader("Authorization:  Bearer abc ")
	require.NoError(t, err)
	assert.Equal(t, "Authorization", k)
	assert.Equal(t, "Bearer abc", v)

	_, _, err = splitHeader("no-colon")
	require.Error(t, err)
	_, _, err = splitHeader(": value")
	require.Error(t, err)
}
