// Package qrcode 二维码生成单元测试
package qrcode

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator_Defaults(t *testing.T) {
	g := NewGenerator()
	assert.Equal(t, 256, g.size)
	assert.Equal(t, Medium, g.recoveryLevel)
}

func TestNewGenerator_WithOptions(t *testing.T) {
	g := NewGenerator(WithSize(512), WithRecoveryLevel(High))
	assert.Equal(t, 512, g.size)
	assert.Equal(t, High, g.recoveryLevel)
}

func TestGenerator_GeneratePNG(t *testing.T) {
	g := NewGenerator()

	data, err := g.GeneratePNG("https://hub.example.com/signup?upline=42")
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// PNG 文件头
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, data[:4])
}

func TestGenerator_GeneratePNG_EmptyContent(t *testing.T) {
	g := NewGenerator()

	_, err := g.GeneratePNG("")
	assert.Error(t, err)
}

func TestGenerator_GenerateBase64(t *testing.T) {
	g := NewGenerator()

	b64, err := g.GenerateBase64("invite-code-ABC123")
	require.NoError(t, err)
	assert.NotEmpty(t, b64)

	// 可被解码回 PNG
	data, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, data[:4])
}

func TestGenerator_GenerateDataURL(t *testing.T) {
	g := NewGenerator()

	url, err := g.GenerateDataURL("invite-code-ABC123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}

func TestGenerator_Generate_Image(t *testing.T) {
	g := NewGenerator(WithSize(128))

	img, err := g.Generate("hello")
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())
}
