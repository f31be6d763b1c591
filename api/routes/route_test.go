package routes

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"contract-admin/api/common/statecode"
	"contract-admin/api/controllers"
	"contract-admin/api/models/ws"
	"contract-admin/api/validate"
	"contract-admin/config"
	"contract-admin/db"
	"contract-admin/internal/connection"
	"contract-admin/internal/contract"
	"contract-admin/internal/contract/contracttest"
	"contract-admin/internal/dispatch"
	"contract-admin/internal/events"
	"contract-admin/internal/forms"
	"contract-admin/internal/metrics"
	"contract-admin/internal/wallet"
	"contract-admin/internal/wallet/wallettest"
	"contract-admin/internal/worker"
	"contract-admin/schedule/services"
	"contract-admin/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var operator = common.HexToAddress("0x1234567890abcdef1234567890abcdef1234abcd")

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type fixture struct {
	t       *testing.T
	engine  *gin.Engine
	panel   *controllers.Panel
	wallet  *wallettest.Wallet
	tracker *connection.Tracker
	pool    *worker.Pool
}

func newFixture(t *testing.T) *fixture {
	gin.SetMode(gin.TestMode)
	validate.BindingValidator()

	hash, err := utils.HashPassword("secret")
	require.NoError(t, err)
	conf := &config.Conf{
		Env:          config.EnvConfig{Version: "v1"},
		Contract:     config.ContractConfig{Address: contracttest.Address, CurrencySymbol: "MATIC", CurrencyDecimal: 18},
		Network:      config.NetworkConfig{ChainId: 137, Name: "Polygon"},
		Jwt:          config.JwtConfig{SecretKey: "test-secret", ExpireTime: 3600},
		DefaultAdmin: config.DefaultAdminConfig{Username: "admin", Password: hash},
		Threshold:    config.ThresholdConfig{ContractBalanceMin: "1"},
		Events:       config.EventsConfig{Enabled: true, Recent: 10},
	}

	w := wallettest.New(operator, 137)
	w.Outputs["getPrice"] = []wallet.Output{{Value: big.NewInt(100)}}
	w.BlockNumber = 42

	iface := contracttest.Load(t)
	tracker := connection.NewTracker(w, wallet.ChainParams{ChainID: 137, Name: "Polygon"})
	d := dispatch.New(iface, w, w, tracker, dispatch.Options{Selection: []string{contract.SelectAll}})
	monitor, err := services.NewBalanceMonitor(w, conf, nil)
	require.NoError(t, err)
	pool := worker.Start(2, 4)
	t.Cleanup(pool.Stop)

	p := &controllers.Panel{
		Conf:       conf,
		Interface:  iface,
		Model:      forms.Synthesize(iface, []string{contract.SelectAll}, forms.Options{CurrencySymbol: "MATIC"}),
		Dispatcher: d,
		Tracker:    tracker,
		Pool:       pool,
		Sessions:   db.NewMemorySessions(),
		Monitor:    monitor,
		Events:     events.NewRecorder(iface.ABI(), events.NewMemoryStore(50)),
		Hub:        ws.NewHub(),
	}
	p.Forward()
	return &fixture{t: t, engine: InitRoute(gin.New(), p, metrics.New()), panel: p, wallet: w, tracker: tracker, pool: pool}
}

func (f *fixture) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		if strings.HasPrefix(body, "{") {
			req.Header.Set("Content-Type", "application/json")
		} else {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if token != "" {
		req.Header.Set("authorization", token)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) api(method, path, body, token string) envelope {
	rec := f.do(method, path, body, token)
	require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
	var env envelope
	require.NoError(f.t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func (f *fixture) login() string {
	env := f.api("POST", "/api/v1/user/login", `{"name":"admin","password":"secret"}`, "")
	require.Equal(f.t, statecode.CommonSuccess, env.Code)
	var data struct {
		TokenId string `json:"token_id"`
	}
	require.NoError(f.t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(f.t, data.TokenId)
	return data.TokenId
}

func (f *fixture) result(function string) (bool, forms.Panel) {
	env := f.api("GET", "/api/v1/functions/"+function+"/result", "", "")
	require.Equal(f.t, statecode.CommonSuccess, env.Code)
	var data struct {
		Busy  bool        `json:"busy"`
		Panel forms.Panel `json:"panel"`
	}
	require.NoError(f.t, json.Unmarshal(env.Data, &data))
	return data.Busy, data.Panel
}

func TestPageShowsStatusAndForms(t *testing.T) {
	f := newFixture(t)
	rec := f.do("GET", "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Wallet not connected.")
	assert.Contains(t, body, `action="/connect"`)
	assert.Contains(t, body, connection.ActionConnect)
	assert.Contains(t, body, forms.WriteGroupTitle)
	assert.Contains(t, body, `id="fn-setPrice"`)
}

func TestConnectForm(t *testing.T) {
	f := newFixture(t)
	rec := f.do("POST", "/connect", "", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, connection.StatusConnected, f.tracker.State().Status)

	env := f.api("GET", "/api/v1/connection", "", "")
	var state connection.State
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.True(t, state.OnRequiredNetwork)
	assert.Equal(t, "Connected: 0x1234...abcd", state.Message)
}

func TestReadFormStoresResult(t *testing.T) {
	f := newFixture(t)
	rec := f.do("POST", "/functions/getPrice", "x=1", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/#fn-getPrice", rec.Header().Get("Location"))

	busy, panel := f.result("getPrice")
	assert.False(t, busy)
	assert.Equal(t, forms.ToneSuccess, panel.Tone)
	assert.Equal(t, "100", panel.Text)

	page := f.do("GET", "/", "", "").Body.String()
	assert.Contains(t, page, "Query result:")
}

func TestUnknownFunctionForm(t *testing.T) {
	f := newFixture(t)
	rec := f.do("POST", "/functions/selfDestruct", "a=1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteFormCollectsFieldsInDeclaredOrder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tracker.Connect(t.Context()))

	form := url.Values{"allowed": {"true", "false"}, "accounts": {"0x01, 0x02"}}
	rec := f.do("POST", "/functions/setWhitelist", form.Encode(), "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	require.Eventually(t, func() bool { return f.wallet.TransactionCount() == 1 }, time.Second, 5*time.Millisecond)
	tx := f.wallet.Transactions[0]
	assert.Equal(t, []any{[]string{"0x01", "0x02"}, "true"}, tx.Args.Raw())
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	env := f.api("POST", "/api/v1/user/login", `{"name":"admin","password":"wrong"}`, "")
	assert.Equal(t, statecode.NameOrPasswordErr, env.Code)

	env = f.api("POST", "/api/v1/user/login", `{"name":"admin"}`, "")
	assert.Equal(t, statecode.ParameterEmptyErr, env.Code)

	token := f.login()
	env = f.api("POST", "/api/v1/user/logout", "", token)
	assert.Equal(t, statecode.CommonSuccess, env.Code)

	env = f.api("POST", "/api/v1/functions/pauseContract", `{}`, token)
	assert.Equal(t, statecode.TokenErr, env.Code, "token revoked by logout")
}

func TestInvokeRequiresToken(t *testing.T) {
	f := newFixture(t)
	env := f.api("POST", "/api/v1/functions/setPrice", `{"args":{"amount":"100"}}`, "")
	assert.Equal(t, statecode.TokenErr, env.Code)
	assert.Zero(t, f.wallet.TransactionCount())
}

func TestInvokeBlockedWithoutConnection(t *testing.T) {
	f := newFixture(t)
	token := f.login()

	env := f.api("POST", "/api/v1/functions/setPrice", `{"args":{"amount":"100"}}`, token)
	assert.Equal(t, statecode.ConnectionMissing, env.Code)
	assert.Zero(t, f.wallet.TransactionCount())

	_, panel := f.result("setPrice")
	assert.Equal(t, forms.ToneDanger, panel.Tone)
}

func TestInvokeWriteConfirms(t *testing.T) {
	f := newFixture(t)
	token := f.login()
	env := f.api("POST", "/api/v1/connection/connect", "", token)
	require.Equal(t, statecode.CommonSuccess, env.Code)

	env = f.api("POST", "/api/v1/functions/setPrice", `{"args":{"amount":"100"}}`, token)
	require.Equal(t, statecode.CommonSuccess, env.Code)
	var data struct {
		Id    string      `json:"id"`
		Panel forms.Panel `json:"panel"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.Id)
	assert.True(t, data.Panel.Busy)

	require.Eventually(t, func() bool {
		busy, panel := f.result("setPrice")
		return !busy && panel.Tone == forms.ToneSuccess
	}, time.Second, 5*time.Millisecond)
	_, panel := f.result("setPrice")
	assert.Contains(t, panel.Text, "Block: 42")
	assert.Equal(t, []any{"100"}, f.wallet.Transactions[0].Args.Raw())
}

func TestInvokeRead(t *testing.T) {
	f := newFixture(t)
	token := f.login()
	env := f.api("POST", "/api/v1/functions/getPrice", "", token)
	require.Equal(t, statecode.CommonSuccess, env.Code)

	var data struct {
		Result struct {
			Outcome dispatch.Outcome `json:"outcome"`
			Value   json.RawMessage  `json:"value"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, dispatch.OutcomeSuccess, data.Result.Outcome)
	assert.JSONEq(t, `"100"`, string(data.Result.Value))
}

func TestInvokeRejectsNegativeValue(t *testing.T) {
	f := newFixture(t)
	token := f.login()
	env := f.api("POST", "/api/v1/functions/deposit", `{"value":"-1"}`, token)
	assert.Equal(t, statecode.InvalidArgument, env.Code)
}

func TestSwitchNetwork(t *testing.T) {
	f := newFixture(t)
	f.wallet.SetChain(1)
	token := f.login()
	env := f.api("POST", "/api/v1/connection/switch", "", token)
	assert.Equal(t, statecode.CommonSuccess, env.Code)
	assert.Equal(t, connection.StatusConnected, f.tracker.State().Status)
}

func TestBalance(t *testing.T) {
	f := newFixture(t)
	f.wallet.Balances[common.HexToAddress(contracttest.Address)] = big.NewInt(5e17)

	env := f.api("GET", "/api/v1/contract/balance", "", "")
	require.Equal(t, statecode.CommonSuccess, env.Code)
	var data struct {
		Balance        string `json:"balance"`
		Symbol         string `json:"symbol"`
		BelowThreshold bool   `json:"below_threshold"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "0.5000", data.Balance)
	assert.Equal(t, "MATIC", data.Symbol)
	assert.True(t, data.BelowThreshold)
}

func TestRecordsDisabled(t *testing.T) {
	f := newFixture(t)
	env := f.api("GET", "/api/v1/invocations", "", f.login())
	assert.Equal(t, statecode.RecordsDisabled, env.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do("GET", "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFormsModel(t *testing.T) {
	f := newFixture(t)
	env := f.api("GET", "/api/v1/forms", "", "")
	require.Equal(t, statecode.CommonSuccess, env.Code)
	var m forms.Model
	require.NoError(t, json.Unmarshal(env.Data, &m))
	_, ok := m.Form("setPrice")
	assert.True(t, ok)
}

func TestRecentEvents(t *testing.T) {
	f := newFixture(t)
	iface := f.panel.Interface
	pool := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	f.panel.Events.Handle(context.Background(), contracttest.PoolAddedLog(t, iface, pool, 1, 100, 0))
	f.panel.Events.Handle(context.Background(), contracttest.PoolAddedLog(t, iface, pool, 2, 101, 0))

	env := f.api("GET", "/api/v1/events?limit=1", "", "")
	require.Equal(t, statecode.CommonSuccess, env.Code)
	var data []struct {
		Name        string            `json:"name"`
		BlockNumber uint64            `json:"blockNumber"`
		Args        map[string]string `json:"args"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data, 1)
	assert.Equal(t, "PoolAdded", data[0].Name)
	assert.EqualValues(t, 101, data[0].BlockNumber)
	assert.Equal(t, "2", data[0].Args["id"])

	env = f.api("GET", "/api/v1/events", "", "")
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data, 2)

	assert.Equal(t, statecode.InvalidArgument, f.api("GET", "/api/v1/events?limit=501", "", "").Code)

	body := f.do("GET", "/", "", "").Body.String()
	assert.Contains(t, body, "Recent Contract Events")
	assert.Contains(t, body, "<td>PoolAdded</td><td>101</td>")
}

func TestEventsDisabled(t *testing.T) {
	f := newFixture(t)
	f.panel.Events = nil

	assert.Equal(t, statecode.EventsDisabled, f.api("GET", "/api/v1/events", "", "").Code)
	assert.NotContains(t, f.do("GET", "/", "", "").Body.String(), "Recent Contract Events")
}
