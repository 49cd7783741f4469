package publish

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/webdsl/internal/config"
	"github.com/vango-dev/webdsl/internal/errors"
)

var siteFiles = []File{
	{Name: "index.html", Data: []byte("<!DOCTYPE html>\n")},
	{Name: "contact/form.html", Data: []byte("<form></form>\n")},
	{Name: "styles.css", Data: []byte("h1 {\n  color: red;\n}\n")},
}

func TestContentType(t *testing.T) {
	assert.Equal(t, ContentTypeHTML, ContentType("a/b.HTML"))
	assert.Equal(t, ContentTypeCSS, ContentType("styles.css"))
	assert.Equal(t, "application/octet-stream", ContentType("README"))
}

func TestDirSink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Publish(context.Background(), NewDirSink(dir), siteFiles))

	data, err := os.ReadFile(filepath.Join(dir, "contact", "form.html"))
	require.NoError(t, err)
	assert.Equal(t, "<form></form>\n", string(data))
}

func TestDirSinkRejectsEscapingNames(t *testing.T) {
	err := NewDirSink(t.TempDir()).Put(context.Background(), "../evil.html", nil, ContentTypeHTML)
	assert.True(t, errors.Is(err, errors.ErrPublishFailed))
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	require.NoError(t, Publish(context.Background(), sink, siteFiles))

	assert.Equal(t, []string{"contact/form.html", "index.html", "styles.css"}, sink.Names())
	f, ok := sink.Get("styles.css")
	require.True(t, ok)
	assert.Equal(t, ContentTypeCSS, f.ContentType)
}

func TestPublishCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := NewMemorySink()
	err := Publish(ctx, sink, siteFiles)
	assert.True(t, errors.Is(err, errors.ErrPublishFailed))
	assert.Empty(t, sink.Names())
}

func TestMulti(t *testing.T) {
	a, b := NewMemorySink(), NewMemorySink()
	require.NoError(t, Publish(context.Background(), Multi(a, b), siteFiles[:1]))
	assert.Equal(t, a.Names(), b.Names())
}

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func TestS3Sink(t *testing.T) {
	client := &fakeS3{}
	sink := NewS3Sink(client, "site-bucket", "preview")
	require.NoError(t, Publish(context.Background(), sink, siteFiles))

	require.Len(t, client.inputs, 3)
	in := client.inputs[1]
	assert.Equal(t, "site-bucket", aws.ToString(in.Bucket))
	assert.Equal(t, "preview/contact/form.html", aws.ToString(in.Key))
	assert.Equal(t, ContentTypeHTML, aws.ToString(in.ContentType))
	assert.Equal(t, "<form></form>\n", client.bodies[1])
}

func TestS3SinkError(t *testing.T) {
	sink := NewS3Sink(&fakeS3{err: io.ErrUnexpectedEOF}, "b", "")
	err := sink.Put(context.Background(), "index.html", nil, ContentTypeHTML)
	assert.True(t, errors.Is(err, errors.ErrPublishFailed))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestNewS3Client(t *testing.T) {
	client := NewS3Client(config.S3Config{Region: "eu-west-1", Endpoint: "http://localhost:9000"})
	opts := client.Options()
	assert.Equal(t, "eu-west-1", opts.Region)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	_, err := envCredentials(context.Background())
	assert.Error(t, err)

	t.Setenv("AWS_ACCESS_KEY_ID", "id")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id", creds.AccessKeyID)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisSink(t *testing.T) {
	mr, client := newRedis(t)
	sink := NewRedisSinkFromClient(client, WithPrefix("site:"))
	ctx := context.Background()

	require.NoError(t, Publish(ctx, sink, siteFiles))

	got, err := mr.Get("site:index.html")
	require.NoError(t, err)
	assert.Equal(t, "<!DOCTYPE html>\n", got)

	manifest, err := sink.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"index.html":        ContentTypeHTML,
		"contact/form.html": ContentTypeHTML,
		"styles.css":        ContentTypeCSS,
	}, manifest)

	data, err := sink.Get(ctx, "styles.css")
	require.NoError(t, err)
	assert.Equal(t, "h1 {\n  color: red;\n}\n", string(data))

	_, err = sink.Get(ctx, "missing.html")
	assert.True(t, errors.Is(err, errors.ErrPublishFailed))
}

func TestRedisSinkTTL(t *testing.T) {
	mr, client := newRedis(t)
	sink := NewRedisSinkFromClient(client, WithTTL(time.Minute))
	require.NoError(t, sink.Put(context.Background(), "index.html", []byte("x"), ContentTypeHTML))

	assert.Equal(t, time.Minute, mr.TTL(DefaultRedisPrefix+"index.html"))
	assert.Equal(t, time.Minute, mr.TTL(sink.ManifestKey()))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(DefaultRedisPrefix+"index.html"))
}

func TestRedisSinkUnavailable(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()
	err := NewRedisSinkFromClient(client).Put(context.Background(), "index.html", nil, ContentTypeHTML)
	assert.True(t, errors.Is(err, errors.ErrPublishFailed))
}
