package brewfather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/brewstock/internal/apperr"
	"github.com/starford/brewstock/internal/credentials"
	"github.com/starford/brewstock/internal/inventory"
	"github.com/starford/brewstock/internal/metrics"
	"github.com/starford/brewstock/internal/testutil"
)

func testClient(t *testing.T) (*Client, *testutil.Upstream) {
	t.Helper()
	up := testutil.FakeBrewfather(t)
	c := New(testutil.Credentials(), Options{
		BaseURL:    up.URL,
		HTTPClient: up.Client(),
		Metrics:    metrics.New(),
	})
	return c, up
}

func TestFermentables(t *testing.T) {
	c, _ := testClient(t)
	items, err := c.Fermentables(context.Background())
	if err != nil {
		t.Fatalf("Fermentables: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if items[0].ID != "f-pils" || items[0].Category != "Weyermann" || *items[0].Inventory != 25 {
		t.Errorf("first item = %+v", items[0])
	}
	if items[2].Inventory != nil {
		t.Errorf("absent inventory should stay nil, got %v", *items[2].Inventory)
	}
}

func TestHops(t *testing.T) {
	c, _ := testClient(t)
	items, err := c.Hops(context.Background())
	if err != nil {
		t.Fatalf("Hops: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	citra := items[0]
	if citra.Category != "US" || citra.Alpha != 12 || citra.Year != "2023" {
		t.Errorf("citra = %+v", citra)
	}
	cryo := items[2]
	if cryo.Type != "Cryo" || cryo.Year != "2022" || cryo.UserNotes != "lot 7" {
		t.Errorf("cryo = %+v", cryo)
	}
	if items[1].Year != "" {
		t.Errorf("saaz year = %q, want empty", items[1].Year)
	}
}

func TestBatches_FilteredAndSorted(t *testing.T) {
	c, _ := testClient(t)
	batches, err := c.Batches(context.Background())
	if err != nil {
		t.Fatalf("Batches: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("len = %d, want 2", len(batches))
	}
	if batches[0].Number != 7 || batches[1].Number != 12 {
		t.Errorf("order = %d, %d", batches[0].Number, batches[1].Number)
	}
	pale := batches[1]
	if pale.Name != "Pale Ale" || len(pale.Hops) != 2 || pale.Hops[1].Amount != 50 {
		t.Errorf("pale ale = %+v", pale)
	}
	if pale.Fermentables[1].Category != "Simpsons" {
		t.Errorf("fermentable category = %q", pale.Fermentables[1].Category)
	}
}

func TestInScope(t *testing.T) {
	in := []inventory.RawBatch{{Number: 5}, {Number: 1200}, {Number: 10}, {Number: 999}}
	got := InScope(in, DefaultMaxBatchNumber)
	want := []int{5, 10, 999}
	if len(got) != len(want) {
		t.Fatalf("got %d batches, want %d", len(got), len(want))
	}
	for i, n := range want {
		if got[i].Number != n {
			t.Errorf("batch %d = %d, want %d", i, got[i].Number, n)
		}
	}

	unsorted := []inventory.RawBatch{{Number: 30}, {Number: 1000}, {Number: 2, Name: "a"}, {Number: 2, Name: "b"}}
	got = InScope(unsorted, DefaultMaxBatchNumber)
	if len(got) != 3 || got[0].Name != "a" || got[1].Name != "b" || got[2].Number != 30 {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestBatch_Detail(t *testing.T) {
	c, _ := testClient(t)
	d, err := c.Batch(context.Background(), "b-12")
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if d.Name != "Pale Ale" || d.Style != "Ale" || d.Number != 12 {
		t.Errorf("detail = %+v", d)
	}
	if d.OriginalGravity == nil || *d.OriginalGravity != 12.4 {
		t.Errorf("OG = %v, want 12.4", d.OriginalGravity)
	}
	if d.FinalGravity == nil || *d.FinalGravity != 2.6 {
		t.Errorf("FG = %v, want 2.6", d.FinalGravity)
	}
	if d.IBU == nil || *d.IBU != 40 {
		t.Errorf("IBU = %v", d.IBU)
	}
}

func TestBatch_NotFound(t *testing.T) {
	c, _ := testClient(t)
	if _, err := c.Batch(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBadCredentials(t *testing.T) {
	up := testutil.FakeBrewfather(t)
	c := New(credentials.Credentials{UserID: "x", APIKey: "wrong"}, Options{BaseURL: up.URL})
	_, err := c.Hops(context.Background())
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
	if !IsUpstream(err) {
		t.Error("IsUpstream should be true")
	}
}

func TestServerError(t *testing.T) {
	c, up := testClient(t)
	up.Fail(http.StatusServiceUnavailable)
	_, err := c.Fermentables(context.Background())
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Errorf("err = %v, want ErrUpstream", err)
	}
}

func TestInvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		call func(*Client) error
	}{
		{
			name: "hop without alpha",
			path: "/inventory/hops",
			body: `[{"_id":"h","name":"Citra","origin":"US"}]`,
			call: func(c *Client) error { _, err := c.Hops(context.Background()); return err },
		},
		{
			name: "fermentable without id",
			path: "/inventory/fermentables",
			body: `[{"name":"Pilsner"}]`,
			call: func(c *Client) error { _, err := c.Fermentables(context.Background()); return err },
		},
		{
			name: "batch line without amount",
			path: "/batches",
			body: `[{"_id":"b","batchNo":1,"recipe":{"name":"x","fermentables":[{"_id":"f"}],"hops":[]}}]`,
			call: func(c *Client) error { _, err := c.Batches(context.Background()); return err },
		},
		{
			name: "batch without recipe",
			path: "/batches",
			body: `[{"_id":"b","batchNo":1}]`,
			call: func(c *Client) error { _, err := c.Batches(context.Background()); return err },
		},
		{
			name: "not an array",
			path: "/inventory/hops",
			body: `{"message":"oops"}`,
			call: func(c *Client) error { _, err := c.Hops(context.Background()); return err },
		},
		{
			name: "year of wrong type",
			path: "/inventory/hops",
			body: `[{"_id":"h","alpha":5,"year":true}]`,
			call: func(c *Client) error { _, err := c.Hops(context.Background()); return err },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, up := testClient(t)
			up.Set(tt.path, tt.body)
			if err := tt.call(c); !errors.Is(err, apperr.ErrInvalidPayload) {
				t.Errorf("err = %v, want ErrInvalidPayload", err)
			}
		})
	}
}

func TestRequestShape(t *testing.T) {
	var gotQuery, gotAuthUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuthUser, _, _ = r.BasicAuth()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(testutil.Credentials(), Options{BaseURL: srv.URL + "/", PageSize: 20, BatchStatus: "Brewing"})
	if _, err := c.Batches(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotAuthUser != testutil.UserID {
		t.Errorf("basic auth user = %q", gotAuthUser)
	}
	for _, want := range []string{"limit=20", "status=Brewing", "order_by=brewDate", "order_by_direction=desc"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestPlato(t *testing.T) {
	if got := Plato(1.05); got != 12.4 {
		t.Errorf("Plato(1.05) = %v", got)
	}
	if got := Plato(1.0); got != 0 {
		t.Errorf("Plato(1.0) = %v", got)
	}
}

func TestYearValue(t *testing.T) {
	cases := map[string]string{`2021`: "2021", `"2020"`: "2020", `null`: "", `0`: "", `""`: ""}
	for in, want := range cases {
		var y yearValue
		if err := y.UnmarshalJSON([]byte(in)); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if string(y) != want {
			t.Errorf("%s -> %q, want %q", in, y, want)
		}
	}
}
