package httphandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gaze-network/drop-offerer/modules/drop"
	"github.com/gaze-network/drop-offerer/modules/drop/api/httphandler"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/entity"
	"github.com/gaze-network/drop-offerer/modules/drop/internal/extradata"
	"github.com/gaze-network/drop-offerer/modules/drop/repository/memory"
	"github.com/gaze-network/drop-offerer/pkg/crypto"
	"github.com/gaze-network/drop-offerer/pkg/errorhandler"
	"github.com/gofiber/fiber/v2"
	"github.com/holiman/uint256"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreAnyFunction("github.com/valyala/fasthttp.updateServerDate.func1"))
}

var (
	self    = common.HexToAddress("0x00000000000000000000000000000000000d0d0d")
	creator = common.HexToAddress("0x000000000000000000000000000000000000c001")
	feeTo   = common.HexToAddress("0x000000000000000000000000000000000000fee1")
	minter  = common.HexToAddress("0x0000000000000000000000000000000000001111")

	now = time.Unix(1_700_000_000, 0)
)

type testServer struct {
	app        *fiber.App
	engine     *drop.Engine
	owner      *crypto.Client
	settlement *crypto.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	owner, err := crypto.GenerateKey()
	require.NoError(t, err)
	settlement, err := crypto.GenerateKey()
	require.NoError(t, err)

	clock := func() time.Time { return now }
	repo := memory.NewRepository(memory.WithClock(clock))
	engine := drop.NewEngine(drop.Params{
		Name:          "Drop",
		DomainVersion: "1",
		Self:          self,
		Settlement:    settlement.Address(),
		Clock:         clock,
	}, drop.Dependencies{
		Store:      repo,
		Ledger:     memory.NewTokenLedger(repo, 100),
		Gating:     memory.NewGatingLedger(),
		Delegation: memory.NewDelegationRegistry(),
		Chain:      memory.StaticChain(1),
	})
	ctx := context.Background()
	require.NoError(t, engine.InitOwner(ctx, owner.Address()))
	require.NoError(t, engine.UpdateCreatorPayouts(ctx, owner.Address(), []entity.CreatorPayout{{PayoutAddress: creator, BasisPoints: 10_000}}))
	require.NoError(t, engine.UpdateAllowedFeeRecipient(ctx, owner.Address(), feeTo, true))
	require.NoError(t, engine.UpdatePublicDrop(ctx, owner.Address(), entity.PublicDrop{
		MintPrice:                uint256.MustFromDecimal("1000000000000000000"),
		StartTime:                uint64(now.Unix()) - 100,
		EndTime:                  uint64(now.Unix()) + 100,
		MaxTotalMintableByWallet: 5,
		FeeBps:                   500,
		RestrictFeeRecipients:    true,
	}))

	app := fiber.New(fiber.Config{ErrorHandler: errorhandler.NewHTTPErrorHandler()})
	require.NoError(t, httphandler.New(engine, func() int64 { return now.Unix() }).Mount(app))
	t.Cleanup(func() { _ = app.Shutdown() })

	return &testServer{app: app, engine: engine, owner: owner, settlement: settlement}
}

func (s *testServer) do(t *testing.T, method, path string, body any, signer *crypto.Client) (int, []byte) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if signer != nil {
		sig, err := signer.SignPersonal(raw)
		require.NoError(t, err)
		req.Header.Set(httphandler.SignatureHeader, hexutil.Encode(sig))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

type response[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result"`
}

type item struct {
	ItemType      string `json:"itemType"`
	Token         string `json:"token"`
	Identifier    string `json:"identifier"`
	Amount        string `json:"amount"`
	AmountDecimal string `json:"amountDecimal"`
	Recipient     string `json:"recipient"`
}

type order struct {
	Offer         []item `json:"offer"`
	Consideration []item `json:"consideration"`
}

type substandard struct {
	ID   uint8  `json:"id"`
	Name string `json:"name"`
}

type metadata struct {
	Name    string `json:"name"`
	Schemas []struct {
		ID uint64 `json:"id"`
	} `json:"schemas"`
	SupportedSubstandards []substandard `json:"supportedSubstandards"`
}

type events struct {
	Events []struct {
		Seq  uint64 `json:"seq"`
		Kind string `json:"kind"`
	} `json:"events"`
	NextSeq uint64 `json:"nextSeq"`
}

type config struct {
	Owner         string   `json:"owner"`
	AllowedPayers []string `json:"allowedPayers"`
	PublicDrop    struct {
		MintPriceDecimal string `json:"mintPriceDecimal"`
	} `json:"publicDrop"`
}

var expirySeq atomic.Int64

// expiresAt is unique per call so signed bodies built by tests never repeat.
func expiresAt() int64 {
	return now.Unix() + 60 + expirySeq.Add(1)%500
}

func publicOrderBody(quantity string) map[string]any {
	return map[string]any{
		"fulfiller": minter.Hex(),
		"minimumReceived": []map[string]any{{
			"itemType":   "ERC1155",
			"token":      self.Hex(),
			"identifier": "0",
			"amount":     quantity,
		}},
		"context":   hexutil.Encode(extradata.EncodePublic(feeTo, minter)),
		"expiresAt": expiresAt(),
	}
}

func TestGetMetadata(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/drop/v1/metadata", nil, nil)
	require.Equal(t, http.StatusOK, status)

	var resp response[metadata]
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotNil(t, resp.Result)
	assert.Equal(t, "Drop", resp.Result.Name)
	require.Len(t, resp.Result.Schemas, 1)
	assert.Equal(t, uint64(drop.SchemaID), resp.Result.Schemas[0].ID)
	assert.Equal(t, []substandard{{ID: 0, Name: "public"}, {ID: 1, Name: "allow_list"}}, resp.Result.SupportedSubstandards)
}

func TestPreviewOrder(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/drop/v1/orders/preview", publicOrderBody("2"), nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var resp response[order]
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotNil(t, resp.Result)
	require.Len(t, resp.Result.Offer, 1)
	assert.Equal(t, "2", resp.Result.Offer[0].Amount)
	require.Len(t, resp.Result.Consideration, 2)
	assert.Equal(t, item{
		ItemType:      "NATIVE",
		Token:         common.Address{}.Hex(),
		Identifier:    "0",
		Amount:        "100000000000000000",
		AmountDecimal: "0.1",
		Recipient:     feeTo.Hex(),
	}, resp.Result.Consideration[0])
	assert.Equal(t, "1900000000000000000", resp.Result.Consideration[1].Amount)
	assert.Equal(t, "1.9", resp.Result.Consideration[1].AmountDecimal)
	assert.Equal(t, creator.Hex(), resp.Result.Consideration[1].Recipient)
}

func TestPreviewOrderDomainError(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/drop/v1/orders/preview", publicOrderBody("6"), nil)
	require.Equal(t, http.StatusBadRequest, status)

	var resp struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, string(entity.ErrMintQuantityExceedsMaxMintedPerWallet), resp.Code)
	assert.Equal(t, "6", resp.Details["total"])
	assert.Equal(t, "5", resp.Details["allowed"])
}

func TestPreviewOrderValidation(t *testing.T) {
	s := newTestServer(t)

	req := publicOrderBody("two")
	req["fulfiller"] = "not-an-address"
	status, body := s.do(t, http.MethodPost, "/drop/v1/orders/preview", req, nil)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "validation error")
}

func TestGenerateOrder(t *testing.T) {
	s := newTestServer(t)

	t.Run("unsigned", func(t *testing.T) {
		status, _ := s.do(t, http.MethodPost, "/drop/v1/orders/generate", publicOrderBody("1"), nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("not_settlement", func(t *testing.T) {
		status, body := s.do(t, http.MethodPost, "/drop/v1/orders/generate", publicOrderBody("1"), s.owner)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, string(body), string(entity.ErrInvalidCaller))
	})

	t.Run("settlement", func(t *testing.T) {
		status, body := s.do(t, http.MethodPost, "/drop/v1/orders/generate", publicOrderBody("1"), s.settlement)
		require.Equal(t, http.StatusOK, status, string(body))

		status, body = s.do(t, http.MethodGet, "/drop/v1/events", nil, nil)
		require.Equal(t, http.StatusOK, status)
		var resp response[events]
		require.NoError(t, json.Unmarshal(body, &resp))
		require.NotEmpty(t, resp.Result.Events)
		last := resp.Result.Events[len(resp.Result.Events)-1]
		assert.Equal(t, string(entity.EventKindMint), last.Kind)
		assert.Equal(t, last.Seq+1, resp.Result.NextSeq)
	})
}

func TestSignedRequestReplay(t *testing.T) {
	s := newTestServer(t)

	order := publicOrderBody("1")
	status, body := s.do(t, http.MethodPost, "/drop/v1/orders/generate", order, s.settlement)
	require.Equal(t, http.StatusOK, status, string(body))
	status, body = s.do(t, http.MethodPost, "/drop/v1/orders/generate", order, s.settlement)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "replayed request")

	payerAddress := common.HexToAddress("0x0000000000000000000000000000000000004444")
	payer := map[string]any{"address": payerAddress.Hex(), "allowed": true, "expiresAt": expiresAt()}
	status, body = s.do(t, http.MethodPost, "/drop/v1/admin/payer", payer, s.owner)
	require.Equal(t, http.StatusOK, status, string(body))
	payer["allowed"] = false
	status, body = s.do(t, http.MethodPost, "/drop/v1/admin/payer", payer, s.owner)
	require.Equal(t, http.StatusOK, status, string(body))
	payer["allowed"] = true
	status, _ = s.do(t, http.MethodPost, "/drop/v1/admin/payer", payer, s.owner)
	assert.Equal(t, http.StatusConflict, status)

	allowed, err := s.engine.Store().IsAllowedPayer(context.Background(), payerAddress)
	require.NoError(t, err)
	assert.False(t, allowed)

	events, err := s.engine.Store().GetEvents(context.Background(), 1, 100)
	require.NoError(t, err)
	mints := lo.CountBy(events, func(e entity.Event) bool { return e.Kind == entity.EventKindMint })
	assert.Equal(t, 1, mints)
}

func TestAdmin(t *testing.T) {
	s := newTestServer(t)
	stranger, err := crypto.GenerateKey()
	require.NoError(t, err)

	payer := common.HexToAddress("0x0000000000000000000000000000000000003333")
	body := func() map[string]any {
		return map[string]any{"address": payer.Hex(), "allowed": true, "expiresAt": expiresAt()}
	}

	t.Run("missing_signature", func(t *testing.T) {
		status, _ := s.do(t, http.MethodPost, "/drop/v1/admin/payer", body(), nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("expired", func(t *testing.T) {
		req := body()
		req["expiresAt"] = now.Unix()
		status, _ := s.do(t, http.MethodPost, "/drop/v1/admin/payer", req, s.owner)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("too_far", func(t *testing.T) {
		req := body()
		req["expiresAt"] = now.Unix() + httphandler.MaxSignatureValidity + 1
		status, _ := s.do(t, http.MethodPost, "/drop/v1/admin/payer", req, s.owner)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("not_owner", func(t *testing.T) {
		status, out := s.do(t, http.MethodPost, "/drop/v1/admin/payer", body(), stranger)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, string(out), string(entity.ErrOnlyOwner))
	})

	t.Run("owner", func(t *testing.T) {
		status, resp := s.do(t, http.MethodPost, "/drop/v1/admin/payer", body(), s.owner)
		require.Equal(t, http.StatusOK, status, string(resp))

		status, resp = s.do(t, http.MethodGet, "/drop/v1/config", nil, nil)
		require.Equal(t, http.StatusOK, status)
		var cfg response[config]
		require.NoError(t, json.Unmarshal(resp, &cfg))
		assert.Equal(t, []string{payer.Hex()}, cfg.Result.AllowedPayers)
		assert.Equal(t, s.owner.Address().Hex(), cfg.Result.Owner)
		assert.Equal(t, "1", cfg.Result.PublicDrop.MintPriceDecimal)
	})

	t.Run("duplicate", func(t *testing.T) {
		status, out := s.do(t, http.MethodPost, "/drop/v1/admin/payer", body(), s.owner)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, string(out), string(entity.ErrDuplicateEntry))
	})

	t.Run("allow_list_root", func(t *testing.T) {
		root := common.HexToHash("0x01")
		req := map[string]any{"merkleRoot": root.Hex(), "expiresAt": expiresAt()}
		status, resp := s.do(t, http.MethodPost, "/drop/v1/admin/allow-list", req, s.owner)
		require.Equal(t, http.StatusOK, status, string(resp))

		got, err := s.engine.Store().GetAllowListMerkleRoot(context.Background())
		require.NoError(t, err)
		assert.Equal(t, root, got)

		req["merkleRoot"] = "0x01"
		status, _ = s.do(t, http.MethodPost, "/drop/v1/admin/allow-list", req, s.owner)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}
