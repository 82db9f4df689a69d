package mcp_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/devassist/api/mcp"
	"github.com/papercomputeco/devassist/pkg/logger"
	"github.com/papercomputeco/devassist/pkg/storage"
	"github.com/papercomputeco/devassist/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/devassist/pkg/utils/test"
)

var _ = Describe("MCP Server", func() {
	var (
		server *mcp.Server
		driver *inmemory.Driver
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()

		var err error
		server, err = mcp.NewServer(mcp.Config{
			Driver: driver,
			Logger: logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when storage driver is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Logger: logger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("storage driver is required")))
		})

		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Driver: driver})
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("returns an HTTP handler", func() {
			Expect(server.Handler()).NotTo(BeNil())
		})
	})

	Describe("tools", func() {
		var (
			ctx     context.Context
			session *sdk.ClientSession
			t0      time.Time
		)

		call := func(name string, args map[string]any) (*sdk.CallToolResult, map[string]any) {
			res, err := session.CallTool(ctx, &sdk.CallToolParams{Name: name, Arguments: args})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Content).NotTo(BeEmpty())

			text, ok := res.Content[0].(*sdk.TextContent)
			Expect(ok).To(BeTrue())
			if res.IsError {
				return res, map[string]any{"message": text.Text}
			}

			var out map[string]any
			Expect(json.Unmarshal([]byte(text.Text), &out)).To(Succeed())
			return res, out
		}

		BeforeEach(func() {
			ctx = context.Background()
			t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

			for _, turn := range []*storage.Turn{
				testutils.NewTestTurn("second", 3, t0.Add(time.Minute)),
				testutils.NewTestTurn("first", 3, t0),
				testutils.NewTestTurn("third", 3, t0.Add(2*time.Minute)),
				testutils.NewTestTurn("elsewhere", 4, t0),
			} {
				_, err := driver.Put(ctx, turn)
				Expect(err).NotTo(HaveOccurred())
			}

			httpServer := httptest.NewServer(server.Handler())
			DeferCleanup(httpServer.Close)

			client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
			var err error
			session, err = client.Connect(ctx, &sdk.StreamableClientTransport{Endpoint: httpServer.URL}, nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(session.Close)
		})

		It("advertises list_turns and get_turn", func() {
			res, err := session.ListTools(ctx, &sdk.ListToolsParams{})
			Expect(err).NotTo(HaveOccurred())

			names := make([]string, 0, len(res.Tools))
			for _, tool := range res.Tools {
				names = append(names, tool.Name)
			}
			Expect(names).To(ConsistOf("list_turns", "get_turn"))
		})

		It("lists a session's turns oldest first", func() {
			res, out := call("list_turns", map[string]any{"session_id": 3})
			Expect(res.IsError).To(BeFalse())
			Expect(out["count"]).To(BeNumerically("==", 3))

			turns := out["turns"].([]any)
			Expect(turns[0].(map[string]any)["id"]).To(Equal("first"))
			Expect(turns[0].(map[string]any)["started_at"]).To(Equal("2024-05-01T12:00:00Z"))
			Expect(turns[0].(map[string]any)["duration_ms"]).To(BeNumerically("==", 1000))
			Expect(turns[2].(map[string]any)["id"]).To(Equal("third"))
		})

		It("keeps only the most recent turns when limited", func() {
			_, out := call("list_turns", map[string]any{"session_id": 3, "limit": 2})
			turns := out["turns"].([]any)
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].(map[string]any)["id"]).To(Equal("second"))
		})

		It("returns an empty list for unknown sessions", func() {
			_, out := call("list_turns", map[string]any{"session_id": 42})
			Expect(out["count"]).To(BeNumerically("==", 0))
			Expect(out["turns"]).To(BeEmpty())
		})

		It("rejects negative session IDs", func() {
			res, out := call("list_turns", map[string]any{"session_id": -1})
			Expect(res.IsError).To(BeTrue())
			Expect(out["message"]).To(ContainSubstring("must not be negative"))
		})

		It("gets a turn by ID", func() {
			res, out := call("get_turn", map[string]any{"id": "elsewhere"})
			Expect(res.IsError).To(BeFalse())

			turn := out["turn"].(map[string]any)
			Expect(turn["session_id"]).To(BeNumerically("==", 4))
			Expect(turn["question"]).To(Equal("question elsewhere"))
			Expect(turn["outcome"]).To(Equal("answered"))
		})

		It("reports unknown turn IDs as tool errors", func() {
			res, out := call("get_turn", map[string]any{"id": "missing"})
			Expect(res.IsError).To(BeTrue())
			Expect(out["message"]).To(ContainSubstring("turn not found: missing"))
		})
	})
})
