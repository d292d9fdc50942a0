package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarth-shah20/stasis-storage/internal/storage"
)

const listBucketsXML = `<?xml version="1.0" encoding="UTF-8"?>
<ListAllMyBucketsResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Owner><ID>minio</ID><DisplayName>minio</DisplayName></Owner>
  <Buckets>
    <Bucket><Name>media</Name><CreationDate>2024-01-01T00:00:00.000Z</CreationDate></Bucket>
    <Bucket><Name>uploads</Name><CreationDate>2024-01-02T00:00:00.000Z</CreationDate></Bucket>
  </Buckets>
</ListAllMyBucketsResult>`

func hostPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, p, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(p)
	require.NoError(t, err)
	return host, port
}

func minioStorage(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.New("s1", storage.TypeMinio)
	require.NoError(t, err)
	s.SetCredentials("abc", "longpass1")
	return s
}

func TestMinIOProbe(t *testing.T) {
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, listBucketsXML)
	}))
	defer srv.Close()

	host, port := hostPort(t, srv.Listener.Addr().String())
	got, err := MinIO{Timeout: 5 * time.Second, Port: port}.Probe(context.Background(), minioStorage(t), host)

	require.NoError(t, err)
	assert.Equal(t, "s3 api ok, 2 bucket(s)", got)
	assert.Contains(t, authHeader, "Credential=abc/")
}

func TestMinIOProbeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `<Error><Code>InvalidAccessKeyId</Code><Message>denied</Message></Error>`)
	}))
	defer srv.Close()

	host, port := hostPort(t, srv.Listener.Addr().String())
	_, err := MinIO{Timeout: 5 * time.Second, Port: port}.Probe(context.Background(), minioStorage(t), host)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidAccessKeyId")
}
