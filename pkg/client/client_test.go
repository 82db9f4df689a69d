package client_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/devassist/pkg/chatstream"
	"github.com/papercomputeco/devassist/pkg/client"
	"github.com/papercomputeco/devassist/pkg/devserver"
)

// closeTracker records whether a response body was closed.
type closeTracker struct {
	io.ReadCloser
	closed *atomic.Bool
}

func (c closeTracker) Close() error {
	c.closed.Store(true)
	return c.ReadCloser.Close()
}

type trackingTransport struct {
	closed atomic.Bool
}

func (t *trackingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Body = closeTracker{ReadCloser: resp.Body, closed: &t.closed}
	return resp, nil
}

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		server *httptest.Server
		c      *client.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = httptest.NewServer(devserver.NewServer(devserver.Config{}, nil).Handler())
		DeferCleanup(server.Close)

		var err error
		c, err = client.New(server.URL + "/")
		Expect(err).NotTo(HaveOccurred())
	})

	login := func() *client.Client {
		resp, err := c.Login(ctx, "dev", "dev")
		Expect(err).NotTo(HaveOccurred())
		authed, err := client.New(server.URL, client.WithToken(resp.Token))
		Expect(err).NotTo(HaveOccurred())
		return authed
	}

	It("requires a base URL", func() {
		_, err := client.New("")
		Expect(err).To(HaveOccurred())
	})

	It("trims the trailing slash", func() {
		Expect(c.BaseURL()).To(Equal(server.URL))
	})

	Describe("Login", func() {
		It("returns the token and user config", func() {
			resp, err := c.Login(ctx, "dev", "dev")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Token).NotTo(BeEmpty())
			Expect(resp.Config).To(HaveKeyWithValue("response_mode", "concise"))
		})

		It("maps bad credentials to an unauthorized APIError", func() {
			_, err := c.Login(ctx, "dev", "wrong")
			Expect(errors.Is(err, client.ErrUnauthorized)).To(BeTrue())

			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(apiErr.Message).To(Equal("Invalid credentials"))
		})
	})

	Describe("Ask", func() {
		It("streams the answer through the assembler", func() {
			var updates []string
			msg, err := c.Ask(ctx, client.AskRequest{Question: "what is go"}, func(m string) {
				updates = append(updates, m)
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(HavePrefix(`You asked: "what is go".`))
			Expect(updates).NotTo(BeEmpty())
			Expect(updates[len(updates)-1]).To(Equal(msg))
		})

		It("surfaces streamed server errors", func() {
			_, err := c.Ask(ctx, client.AskRequest{Question: "explode " + devserver.DefaultFailTrigger}, nil)
			Expect(err).To(MatchError(chatstream.ErrServerReported))
			Expect(err).To(MatchError(ContainSubstring("Internal server error")))
		})

		It("returns an APIError for rejected questions", func() {
			_, err := c.Ask(ctx, client.AskRequest{}, nil)
			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(apiErr.Message).To(Equal("No question provided"))
		})

		It("reports unreachable backends as transport failures", func() {
			dead := httptest.NewServer(http.NotFoundHandler())
			dead.Close()

			offline, err := client.New(dead.URL)
			Expect(err).NotTo(HaveOccurred())
			_, err = offline.Ask(ctx, client.AskRequest{Question: "anyone?"}, nil)
			Expect(chatstream.KindOf(err)).To(Equal(chatstream.TransportFailure))
		})

		It("closes the response body after the stream", func() {
			transport := &trackingTransport{}
			tracked, err := client.New(server.URL, client.WithHTTPClient(&http.Client{Transport: transport}))
			Expect(err).NotTo(HaveOccurred())

			_, err = tracked.Ask(ctx, client.AskRequest{Question: "close me"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(transport.closed.Load()).To(BeTrue())
		})

		It("closes the response body on a server error", func() {
			transport := &trackingTransport{}
			tracked, err := client.New(server.URL, client.WithHTTPClient(&http.Client{Transport: transport}))
			Expect(err).NotTo(HaveOccurred())

			_, err = tracked.Ask(ctx, client.AskRequest{Question: devserver.DefaultFailTrigger}, nil)
			Expect(err).To(HaveOccurred())
			Expect(transport.closed.Load()).To(BeTrue())
		})

		It("sends the bearer token so answers are saved", func() {
			authed := login()
			id, err := authed.CreateSession(ctx, "")
			Expect(err).NotTo(HaveOccurred())

			answer, err := authed.Ask(ctx, client.AskRequest{Question: "where are the docs kept", SessionID: &id}, nil)
			Expect(err).NotTo(HaveOccurred())

			history, err := authed.SessionHistory(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))
			Expect(history[0]).To(HaveField("Role", client.RoleUser))
			Expect(history[1]).To(HaveField("Content", answer))
		})
	})

	Describe("sessions", func() {
		var authed *client.Client

		BeforeEach(func() {
			authed = login()
		})

		It("creates sessions with the default name", func() {
			id, err := authed.CreateSession(ctx, "")
			Expect(err).NotTo(HaveOccurred())

			sessions, err := authed.ListSessions(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(1))
			Expect(sessions[0].ID).To(Equal(id))
			Expect(sessions[0].Name).To(Equal(client.DefaultSessionName))
		})

		It("renames, saves, clears and deletes", func() {
			id, err := authed.CreateSession(ctx, "scratch")
			Expect(err).NotTo(HaveOccurred())

			Expect(authed.RenameSession(ctx, id, "renamed")).To(Succeed())
			Expect(authed.SaveMessage(ctx, id, client.RoleUser, "hello")).To(Succeed())
			Expect(authed.SaveMessage(ctx, id, client.RoleAssistant, "hi!")).To(Succeed())

			history, err := authed.SessionHistory(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))
			Expect(history[1].Content).To(Equal("hi!"))

			Expect(authed.ClearSessionMessages(ctx, id)).To(Succeed())
			history, err = authed.SessionHistory(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(BeEmpty())

			sessions, err := authed.ListSessions(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions[0].Name).To(Equal("renamed"))

			Expect(authed.DeleteSession(ctx, id)).To(Succeed())
			sessions, err = authed.ListSessions(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(BeEmpty())
		})

		It("rejects an empty rename without calling the backend", func() {
			Expect(authed.RenameSession(ctx, 1, "")).To(MatchError("session name is required"))
		})

		It("reports missing sessions", func() {
			err := authed.DeleteSession(ctx, 404)
			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusNotFound))
			Expect(apiErr.Message).To(Equal("session not found"))
			Expect(errors.Is(err, client.ErrNotFound)).To(BeTrue())
			Expect(errors.Is(err, client.ErrUnauthorized)).To(BeFalse())
		})

		It("requires authentication", func() {
			_, err := c.ListSessions(ctx)
			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusForbidden))
		})
	})

	Describe("modules and config", func() {
		It("lists modules, optionally by team", func() {
			all, err := c.ListModules(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(all)).To(BeNumerically(">=", 2))

			team := 1
			scoped, err := c.ListModules(ctx, &team)
			Expect(err).NotTo(HaveOccurred())
			for _, m := range scoped {
				Expect(*m.TeamID).To(Equal(team))
			}
		})

		It("loads the user config and user info", func() {
			authed := login()
			cfg, err := authed.UserConfig(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(HaveKeyWithValue("chat_persona", "Friendly"))

			info, err := authed.UserInfo(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(info).To(HaveKeyWithValue("username", "dev"))
		})

		It("saves the user config", func() {
			authed := login()
			Expect(authed.SaveUserConfig(ctx, map[string]any{"response_mode": "detailed"})).To(Succeed())

			cfg, err := authed.UserConfig(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(map[string]any{"response_mode": "detailed"}))
		})

		It("refuses to save an empty config", func() {
			Expect(login().SaveUserConfig(ctx, nil)).To(MatchError("no config provided"))
		})
	})

	Describe("knowledge base", func() {
		It("lists documents with their module", func() {
			docs, err := c.ListDocuments(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).NotTo(BeEmpty())
			Expect(docs[0].ModuleName).To(Equal("Onboarding"))
			Expect(docs[0].Title).To(Equal("Code review guide"))
		})

		It("returns module stats", func() {
			stats, err := c.ModuleStats(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.ModuleID).To(Equal(2))
			Expect(stats.DocumentCount).To(Equal(1))
			Expect(stats.TotalEmbeddings).To(BeNumerically(">", 0))
		})

		It("reports unknown modules as not found", func() {
			_, err := c.ModuleStats(ctx, 99)
			Expect(errors.Is(err, client.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("ChangePassword", func() {
		It("replaces the password used at login", func() {
			Expect(c.ChangePassword(ctx, "dev", "n3w")).To(Succeed())

			_, err := c.Login(ctx, "dev", "dev")
			Expect(errors.Is(err, client.ErrUnauthorized)).To(BeTrue())

			resp, err := c.Login(ctx, "dev", "n3w")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.MustChangePassword).To(BeFalse())
		})

		It("requires both fields", func() {
			Expect(c.ChangePassword(ctx, "dev", "")).To(HaveOccurred())
		})

		It("reports unknown users", func() {
			err := c.ChangePassword(ctx, "nobody", "x")
			Expect(errors.Is(err, client.ErrNotFound)).To(BeTrue())
		})
	})
})

var _ = Describe("RecentHistory", func() {
	history := func(n int) []client.HistoryMessage {
		out := make([]client.HistoryMessage, n)
		for i := range out {
			out[i] = client.HistoryMessage{Role: client.RoleUser, Content: strings.Repeat("x", i+1)}
		}
		return out
	}

	It("keeps the last n messages", func() {
		recent := client.RecentHistory(history(10), client.DefaultHistoryWindow)
		Expect(recent).To(HaveLen(6))
		Expect(recent[0].Content).To(HaveLen(5))
	})

	It("returns short histories whole", func() {
		Expect(client.RecentHistory(history(3), 6)).To(HaveLen(3))
	})

	It("returns nothing for a zero window", func() {
		Expect(client.RecentHistory(history(3), 0)).To(BeNil())
	})
})
