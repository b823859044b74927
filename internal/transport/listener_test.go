package transport

import (
	"os"
	"testing"

	"github.com/arthurtosi/Multiroom-Chat-Server/internal/config"
)

func TestListenFailsWithoutCertificates(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg := &config.Config{Port: 0, CertFile: "cert.pem", KeyFile: "key.pem"}
	if _, err := Listen(cfg); err == nil {
		t.Fatal("missing certificate files must fail")
	}
}
