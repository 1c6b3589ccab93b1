package blockchain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

// newRPCServer 模拟 JSON-RPC 节点
func newRPCServer(t *testing.T, results map[string]string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		result, ok := results[req.Method]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestNewClient_RequiresRPC(t *testing.T) {
	_, err := NewClient(&ClientConfig{ChainID: 11155111})
	assert.ErrorIs(t, err, ErrNoRPCConfigured)

	_, err = NewClient(&ClientConfig{ChainID: 11155111, RPCURLs: []string{""}})
	assert.ErrorIs(t, err, ErrNoRPCConfigured)
}

func TestNewClient_DoesNotDial(t *testing.T) {
	srv, calls := newRPCServer(t, map[string]string{"eth_chainId": "0xaa36a7"})

	c, err := NewClient(&ClientConfig{ChainID: 11155111, RPCURLs: []string{srv.URL}})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	assert.Equal(t, int64(11155111), c.ChainID())
	eps := c.Endpoints()
	require.Len(t, eps, 1)
	assert.True(t, eps[0].Healthy)
	assert.Zero(t, eps[0].Failures)
}

func TestClient_BlockNumber(t *testing.T) {
	srv, _ := newRPCServer(t, map[string]string{
		"eth_chainId":     "0xaa36a7",
		"eth_blockNumber": "0x12d687",
	})

	c, err := NewClient(&ClientConfig{ChainID: 11155111, RPCURLs: []string{srv.URL}})
	require.NoError(t, err)
	defer c.Close()

	block, err := c.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1234567), block)

	chainID, err := c.NetworkChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11155111), chainID.Int64())
}

func TestClient_Failover(t *testing.T) {
	bad, _ := newRPCServer(t, map[string]string{})
	good, _ := newRPCServer(t, map[string]string{
		"eth_chainId":     "0x1",
		"eth_blockNumber": "0x10",
	})

	c, err := NewClient(&ClientConfig{
		ChainID:       1,
		RPCURLs:       []string{bad.URL, good.URL},
		RetryInterval: time.Millisecond,
	})
	require.NoError(t, err)
	defer c.Close()

	block, err := c.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(16), block)

	eps := c.Endpoints()
	require.Len(t, eps, 2)
	assert.False(t, eps[0].Healthy)
	assert.Equal(t, 1, eps[0].Failures)
	assert.Equal(t, good.URL, eps[1].URL)
	assert.True(t, eps[1].Healthy)
}

func TestClient_AllEndpointsDown(t *testing.T) {
	bad, _ := newRPCServer(t, map[string]string{})

	c, err := NewClient(&ClientConfig{
		ChainID:       1,
		RPCURLs:       []string{bad.URL},
		MaxRetries:    2,
		RetryInterval: time.Millisecond,
	})
	require.NoError(t, err)

	_, err = c.BlockNumber(context.Background())
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}

func TestClient_ContextCancelled(t *testing.T) {
	bad, _ := newRPCServer(t, map[string]string{})

	c, err := NewClient(&ClientConfig{
		ChainID:       1,
		RPCURLs:       []string{bad.URL},
		MaxRetries:    5,
		RetryInterval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = c.BlockNumber(ctx)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
