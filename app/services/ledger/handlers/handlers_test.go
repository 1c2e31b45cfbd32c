package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/transactchain/app/services/ledger/handlers"
	"github.com/ardanlabs/transactchain/business/web/errs"
	"github.com/ardanlabs/transactchain/foundation/events"
	"github.com/ardanlabs/transactchain/foundation/ledger"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type apiTest struct {
	app   http.Handler
	chain *ledger.Chain
}

func newAPITest(t *testing.T) apiTest {
	chain, err := ledger.New(ledger.Config{Difficulty: 2})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the chain: %v", failed, err)
	}

	app := handlers.APIMux(handlers.APIMuxConfig{
		Build:       "test",
		Shutdown:    make(chan os.Signal, 1),
		Log:         zap.NewNop().Sugar(),
		Chain:       chain,
		Evts:        events.New(0),
		MineTimeout: 10 * time.Second,
		CORSOrigin:  "*",
	})

	return apiTest{app: app, chain: chain}
}

func (at apiTest) do(method string, path string, body string) *httptest.ResponseRecorder {
	var r *http.Request
	switch body {
	case "":
		r = httptest.NewRequest(method, path, nil)
	default:
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	at.app.ServeHTTP(w, r)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("\t%s\tShould be able to decode the response: %v", failed, err)
	}
}

// =============================================================================

func TestLedgerAPI(t *testing.T) {
	at := newAPITest(t)

	t.Run("submit", at.submit)
	t.Run("submitInvalid", at.submitInvalid)
	t.Run("mine", at.mine)
	t.Run("queries", at.queries)
	t.Run("notFound", at.notFound)
	t.Run("cors", at.cors)
	t.Run("historyAnyAddress", at.historyAnyAddress)
}

func (at apiTest) submit(t *testing.T) {
	t.Log("Given the need to submit transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen submitting a valid transaction.", testID)
		{
			w := at.do(http.MethodPost, "/v1/transactions", `{"sender":"alice","receiver":"bob","amount":10.5,"description":"Payment for services"}`)
			if w.Code != http.StatusCreated {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 201 for the response : %v : %s", failed, testID, w.Code, w.Body)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a status code of 201 for the response.", success, testID)

			var resp struct {
				Message    string `json:"message"`
				BlockIndex uint64 `json:"block_index"`
			}
			decode(t, w, &resp)

			if resp.BlockIndex != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould be told the block index is 1, got %d.", failed, testID, resp.BlockIndex)
			}
			t.Logf("\t%s\tTest %d:\tShould be told the block index is 1.", success, testID)

			if at.chain.PendingCount() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have one pending transaction.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have one pending transaction.", success, testID)
		}
	}
}

func (at apiTest) submitInvalid(t *testing.T) {
	type table struct {
		name  string
		body  string
		field string
	}

	tt := []table{
		{name: "amount", body: `{"sender":"alice","receiver":"bob","amount":0}`, field: "amount"},
		{name: "negative", body: `{"sender":"alice","receiver":"bob","amount":"-3"}`, field: "amount"},
		{name: "exponent", body: `{"sender":"alice","receiver":"bob","amount":"1e30000000"}`, field: "amount"},
		{name: "precision", body: `{"sender":"alice","receiver":"bob","amount":"1e-400"}`, field: "amount"},
		{name: "sender", body: `{"receiver":"bob","amount":1}`, field: "sender"},
		{name: "blank", body: `{"sender":"alice","receiver":"   ","amount":1}`, field: "receiver"},
		{name: "timestamp", body: `{"sender":"alice","receiver":"bob","amount":1,"timestamp":5}`},
		{name: "json", body: `{"sender":`},
	}

	t.Log("Given the need to reject invalid transactions.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen submitting a transaction with a bad %s.", testID, tst.name)
			{
				w := at.do(http.MethodPost, "/v1/transactions", tst.body)
				if w.Code != http.StatusBadRequest {
					t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 400 for the response : %v", failed, testID, w.Code)
				}
				t.Logf("\t%s\tTest %d:\tShould receive a status code of 400 for the response.", success, testID)

				var resp errs.Response
				decode(t, w, &resp)

				if tst.field != "" {
					if _, exists := resp.Fields[tst.field]; !exists {
						t.Fatalf("\t%s\tTest %d:\tShould report the %s field : %+v", failed, testID, tst.field, resp)
					}
					t.Logf("\t%s\tTest %d:\tShould report the %s field.", success, testID, tst.field)
				}
			}
		}

		if at.chain.PendingCount() != 1 {
			t.Fatalf("\t%s\tShould not queue invalid transactions.", failed)
		}
		t.Logf("\t%s\tShould not queue invalid transactions.", success)
	}
}

func (at apiTest) mine(t *testing.T) {
	t.Log("Given the need to mine pending transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen mining with pending transactions.", testID)
		{
			w := at.do(http.MethodPost, "/v1/mine", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 200 for the response : %v : %s", failed, testID, w.Code, w.Body)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a status code of 200 for the response.", success, testID)

			var resp struct {
				Message string           `json:"message"`
				Block   ledger.BlockData `json:"block"`
			}
			decode(t, w, &resp)

			if resp.Block.Index != 1 || len(resp.Block.Transactions) != 1 || !strings.HasPrefix(resp.Block.Seal, "00") {
				t.Fatalf("\t%s\tTest %d:\tShould get back the sealed block : %+v", failed, testID, resp.Block)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the sealed block.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen mining with nothing pending.", testID)
		{
			w := at.do(http.MethodPost, "/v1/mine", "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 400 for the response : %v", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a status code of 400 for the response.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen signalling a miner that isn't configured.", testID)
		{
			w := at.do(http.MethodPost, "/v1/mine/signal", "")
			if w.Code != http.StatusServiceUnavailable {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 503 for the response : %v", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a status code of 503 for the response.", success, testID)
		}
	}
}

func (at apiTest) queries(t *testing.T) {
	t.Log("Given the need to query the chain.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen asking for the full chain.", testID)
		{
			w := at.do(http.MethodGet, "/v1/chain", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 200 for the response : %v", failed, testID, w.Code)
			}

			var resp struct {
				Chain  []ledger.BlockData `json:"chain"`
				Length int                `json:"length"`
			}
			decode(t, w, &resp)

			if resp.Length != 2 || len(resp.Chain) != 2 || resp.Chain[1].PreviousSeal != resp.Chain[0].Seal {
				t.Fatalf("\t%s\tTest %d:\tShould get back two linked blocks : %+v", failed, testID, resp)
			}
			t.Logf("\t%s\tTest %d:\tShould get back two linked blocks.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen validating the chain.", testID)
		{
			w := at.do(http.MethodGet, "/v1/valid", "")

			var resp struct {
				IsValid bool `json:"is_valid"`
			}
			decode(t, w, &resp)

			if !resp.IsValid {
				t.Fatalf("\t%s\tTest %d:\tShould report a valid chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould report a valid chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen asking for the history of alice.", testID)
		{
			w := at.do(http.MethodGet, "/v1/transactions/alice", "")

			var resp struct {
				Address      string      `json:"address"`
				Transactions []ledger.Tx `json:"transactions"`
				Count        int         `json:"count"`
			}
			decode(t, w, &resp)

			if resp.Address != "alice" || resp.Count != 1 || resp.Transactions[0].Amount.String() != "10.5" {
				t.Fatalf("\t%s\tTest %d:\tShould get back alice's transaction : %+v", failed, testID, resp)
			}
			t.Logf("\t%s\tTest %d:\tShould get back alice's transaction.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen asking for the pending transactions.", testID)
		{
			w := at.do(http.MethodGet, "/v1/pending", "")

			var resp struct {
				Count int `json:"count"`
			}
			decode(t, w, &resp)

			if resp.Count != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have nothing pending, got %d.", failed, testID, resp.Count)
			}
			t.Logf("\t%s\tTest %d:\tShould have nothing pending.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen asking for the service information.", testID)
		{
			w := at.do(http.MethodGet, "/", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 200 for the response : %v", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a status code of 200 for the response.", success, testID)
		}
	}
}

func (at apiTest) notFound(t *testing.T) {
	type table struct {
		path   string
		status int
	}

	tt := []table{
		{path: "/v1/chain/1", status: http.StatusOK},
		{path: "/v1/chain/7", status: http.StatusNotFound},
		{path: "/v1/chain/abc", status: http.StatusBadRequest},
	}

	t.Log("Given the need to look up blocks by index.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen asking for %s.", testID, tst.path)
			{
				w := at.do(http.MethodGet, tst.path, "")
				if w.Code != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould receive a status code of %d for the response : %v", failed, testID, tst.status, w.Code)
				}
				t.Logf("\t%s\tTest %d:\tShould receive a status code of %d for the response.", success, testID, tst.status)
			}
		}
	}
}

func (at apiTest) cors(t *testing.T) {
	t.Log("Given the need to accept preflight requests.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen sending an OPTIONS request.", testID)
		{
			w := at.do(http.MethodOptions, "/v1/transactions", "")
			if w.Code != http.StatusNoContent {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 204 for the response : %v", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould receive a status code of 204 for the response.", success, testID)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Fatalf("\t%s\tTest %d:\tShould set the allow origin header, got %q.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould set the allow origin header.", success, testID)
		}
	}
}

func (at apiTest) historyAnyAddress(t *testing.T) {
	t.Log("Given the need to query the history of any address.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the address is named like another route.", testID)
		{
			w := at.do(http.MethodPost, "/v1/transactions", `{"sender":"pending","receiver":"bob","amount":"2"}`)
			if w.Code != http.StatusCreated {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 201 for the response : %v : %s", failed, testID, w.Code, w.Body)
			}

			w = at.do(http.MethodPost, "/v1/mine", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould receive a status code of 200 for the response : %v : %s", failed, testID, w.Code, w.Body)
			}

			w = at.do(http.MethodGet, "/v1/transactions/pending", "")

			var resp struct {
				Address string `json:"address"`
				Count   int    `json:"count"`
			}
			decode(t, w, &resp)

			if resp.Address != "pending" || resp.Count != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould get back the history of the address : %+v", failed, testID, resp)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the history of the address.", success, testID)
		}
	}
}
