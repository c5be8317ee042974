package holdings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aman-zulfiqar/solana-auto-exit/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssets struct {
	assets []rpc.Asset
	err    error
}

func (f *fakeAssets) GetAssetsByOwner(_ context.Context, _ string) ([]rpc.Asset, error) {
	return f.assets, f.err
}

func fungible(id, symbol string, raw float64) rpc.Asset {
	return rpc.Asset{
		ID:        id,
		Interface: "FungibleToken",
		TokenInfo: &rpc.AssetTokenInfo{Symbol: symbol, Balance: raw, Decimals: 6},
	}
}

func newTestTracker(t *testing.T, assets *fakeAssets) *Tracker {
	t.Helper()
	ledger, err := NewFileLedger(filepath.Join(t.TempDir(), "data", "wallet_tokens.json"))
	require.NoError(t, err)
	return NewTracker(assets, ledger, TrackerConfig{Owner: "wallet"})
}

func at(sec int64) func() time.Time {
	return func() time.Time { return time.Unix(sec, 0) }
}

func TestScanFiltersNonFungible(t *testing.T) {
	assets := &fakeAssets{assets: []rpc.Asset{
		fungible("A", "AAA", 5_000_000),
		{ID: "nft1", Interface: "V1_NFT", TokenInfo: &rpc.AssetTokenInfo{Balance: 1}},
		{ID: "nft2", Interface: "ProgrammableNFT", TokenInfo: &rpc.AssetTokenInfo{Balance: 1}},
		{ID: "nft3", Interface: "V2_NFT"},
		{ID: "nft4", Interface: "LEGACY_NFT", TokenInfo: &rpc.AssetTokenInfo{Balance: 1}},
		{ID: "core", Interface: "MplCoreAsset", TokenInfo: &rpc.AssetTokenInfo{Balance: 1}},
		fungible("empty", "E", 0),
		{ID: "noinfo", Interface: "FungibleToken"},
	}}
	tr := newTestTracker(t, assets)
	tr.now = at(1000)

	got, err := tr.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Mint)
	assert.Equal(t, "AAA", got[0].Symbol)
	assert.InDelta(t, 5.0, got[0].Balance, 1e-9)
	assert.Equal(t, int64(1000), got[0].FirstSeen.Unix())
}

func TestScanError(t *testing.T) {
	tr := newTestTracker(t, &fakeAssets{err: errors.New("rpc down")})
	_, err := tr.Scan(context.Background())
	assert.ErrorContains(t, err, "rpc down")
}

func TestMergeKeepsFirstSeen(t *testing.T) {
	ctx := context.Background()
	assets := &fakeAssets{assets: []rpc.Asset{fungible("A", "AAA", 1)}}
	tr := newTestTracker(t, assets)

	tr.now = at(1000)
	added, err := tr.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	tr.now = at(1500)
	added, err = tr.Refresh(ctx)
	require.NoError(t, err)
	assert.Zero(t, added)

	all, err := tr.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "A", all[0].Mint)
	assert.Equal(t, int64(1000), all[0].FirstSeen.Unix())
}

func TestMergeIdempotent(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, &fakeAssets{})
	scanned := []Holding{
		{Mint: "A", FirstSeen: time.Unix(1000, 0)},
		{Mint: "B", FirstSeen: time.Unix(1000, 0)},
		{Mint: "A", FirstSeen: time.Unix(1000, 0)},
	}

	added, err := tr.Merge(ctx, scanned)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = tr.Merge(ctx, scanned)
	require.NoError(t, err)
	assert.Zero(t, added)

	all, err := tr.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFindAgedBoundary(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, &fakeAssets{})
	_, err := tr.Merge(ctx, []Holding{{Mint: "A", FirstSeen: time.Unix(1000, 0)}})
	require.NoError(t, err)

	threshold := 300 * time.Second
	cases := []struct {
		now  int64
		aged bool
	}{
		{1399, true},
		{1299, false},
		{1300, false},
		{1301, true},
	}
	for _, tc := range cases {
		got, err := tr.FindAged(ctx, threshold, time.Unix(tc.now, 0))
		require.NoError(t, err)
		if tc.aged {
			assert.Len(t, got, 1, "t=%d", tc.now)
		} else {
			assert.Empty(t, got, "t=%d", tc.now)
		}
	}
}

func TestFindAgedWholeSeconds(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, &fakeAssets{})
	_, err := tr.Merge(ctx, []Holding{{Mint: "A", FirstSeen: time.Unix(1000, 0)}})
	require.NoError(t, err)

	threshold := 300 * time.Second
	got, err := tr.FindAged(ctx, threshold, time.Unix(1300, 400_000_000))
	require.NoError(t, err)
	assert.Empty(t, got, "300.4s is not strictly past 300 whole seconds")

	got, err = tr.FindAged(ctx, threshold, time.Unix(1300, 999_999_999))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = tr.FindAged(ctx, threshold, time.Unix(1301, 0))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAgedPastIgnoresSubSecondFirstSeen(t *testing.T) {
	h := Holding{Mint: "A", FirstSeen: time.Unix(1000, 900_000_000)}
	assert.False(t, h.AgedPast(300*time.Second, time.Unix(1300, 0)))
	assert.True(t, h.AgedPast(300*time.Second, time.Unix(1301, 0)))
	assert.True(t, h.AgedPast(0, time.Unix(1001, 0)))
	assert.False(t, h.AgedPast(0, time.Unix(1000, 0)))
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, &fakeAssets{})
	_, err := tr.Merge(ctx, []Holding{
		{Mint: "A", FirstSeen: time.Unix(1000, 0)},
		{Mint: "B", FirstSeen: time.Unix(900, 0)},
	})
	require.NoError(t, err)

	require.NoError(t, tr.Remove(ctx, "A"))
	require.NoError(t, tr.Remove(ctx, "missing"))

	all, err := tr.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "B", all[0].Mint)
}

func TestListOldestFirst(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, &fakeAssets{})
	_, err := tr.Merge(ctx, []Holding{
		{Mint: "late", FirstSeen: time.Unix(2000, 0)},
		{Mint: "early", FirstSeen: time.Unix(1000, 0)},
	})
	require.NoError(t, err)

	all, err := tr.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "early", all[0].Mint)
	assert.Equal(t, "late", all[1].Mint)
}
