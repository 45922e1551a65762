package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	got  *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.got = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestPut(t *testing.T) {
	fp := &fakePutter{}
	s := newS3(fp, "hub-media", "eu-west-1", zerolog.Nop())

	u, err := s.Put(context.Background(), "events/abc.png", "image/png", 5, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "https://hub-media.s3.eu-west-1.amazonaws.com/events/abc.png", u)
	assert.Equal(t, "hub-media", aws.ToString(fp.got.Bucket))
	assert.Equal(t, "events/abc.png", aws.ToString(fp.got.Key))
	assert.Equal(t, "image/png", aws.ToString(fp.got.ContentType))
	assert.Equal(t, "hello", fp.body)
}

func TestPut_Errors(t *testing.T) {
	boom := errors.New("access denied")
	s := newS3(&fakePutter{err: boom}, "hub-media", "eu-west-1", zerolog.Nop())
	_, err := s.Put(context.Background(), "k", "image/png", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, boom)

	unset := newS3(&fakePutter{}, "", "eu-west-1", zerolog.Nop())
	_, err = unset.Put(context.Background(), "k", "image/png", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}
