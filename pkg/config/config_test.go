package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("NFT_TEST_ADDR", "0xabc")

	assert.Equal(t, "contract: 0xabc", ExpandEnv("contract: ${NFT_TEST_ADDR}"))
	assert.Equal(t, "contract: 0xabc", ExpandEnv("contract: ${NFT_TEST_ADDR:0x0}"))
	assert.Equal(t, "port: 3000", ExpandEnv("port: ${NFT_TEST_MISSING_PORT:3000}"))
	assert.Equal(t, "url: ", ExpandEnv("url: ${NFT_TEST_MISSING_URL}"))
	assert.Equal(t, "rpc: http://localhost:8545", ExpandEnv("rpc: ${NFT_TEST_MISSING_RPC:http://localhost:8545}"))
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("NFT_TEST_STR", "sepolia")
	t.Setenv("NFT_TEST_INT", "42")
	t.Setenv("NFT_TEST_BAD_INT", "x")
	t.Setenv("NFT_TEST_BOOL", "true")
	t.Setenv("NFT_TEST_SLICE", "http://a, http://b,,")

	assert.Equal(t, "sepolia", GetEnv("NFT_TEST_STR", "mainnet"))
	assert.Equal(t, "mainnet", GetEnv("NFT_TEST_NONE", "mainnet"))
	assert.Equal(t, 42, GetEnvInt("NFT_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("NFT_TEST_BAD_INT", 1))
	assert.Equal(t, int64(42), GetEnvInt64("NFT_TEST_INT", 1))
	assert.True(t, GetEnvBool("NFT_TEST_BOOL", false))
	assert.Equal(t, []string{"http://a", "http://b"}, GetEnvSlice("NFT_TEST_SLICE", nil))
	assert.Equal(t, []string{"*"}, GetEnvSlice("NFT_TEST_NONE", []string{"*"}))
}
