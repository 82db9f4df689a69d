package chatstream_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/devassist/pkg/chatstream"
	"github.com/papercomputeco/devassist/pkg/logger"
)

// buffers delivers each element in its own Read call.
type buffers struct {
	parts []string
	reads int
}

func (b *buffers) Read(p []byte) (int, error) {
	if len(b.parts) == 0 {
		return 0, io.EOF
	}
	b.reads++
	n := copy(p, b.parts[0])
	b.parts[0] = b.parts[0][n:]
	if b.parts[0] == "" {
		b.parts = b.parts[1:]
	}
	return n, nil
}

// randomSplit cuts s at random byte offsets, mid-rune included.
func randomSplit(rng *rand.Rand, s string) []string {
	var parts []string
	for len(s) > 0 {
		n := 1 + rng.Intn(len(s))
		if n > 9 {
			n = 1 + rng.Intn(9)
		}
		parts = append(parts, s[:n])
		s = s[n:]
	}
	return parts
}

func chunkRecords(fragments ...string) string {
	var sb strings.Builder
	for _, f := range fragments {
		fmt.Fprintf(&sb, "data: {\"chunk\":%q}\n\n", f)
	}
	return sb.String()
}

type recorder struct {
	updates []string
}

func (r *recorder) update(msg string) {
	r.updates = append(r.updates, msg)
}

var _ = Describe("Assembler", func() {
	var (
		ctx context.Context
		a   *chatstream.Assembler
		rec *recorder
	)

	BeforeEach(func() {
		ctx = context.Background()
		a = chatstream.New()
		rec = &recorder{}
	})

	Describe("Consume", func() {
		It("assembles the two-buffer hello scenario", func() {
			src := &buffers{parts: []string{
				"data: {\"chunk\":\"Hel\"}\n\n",
				"data: {\"chunk\":\"lo\"}\n\ndata: {\"done\":true}\n\n",
			}}

			msg, err := a.Consume(ctx, src, rec.update)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(Equal("Hello"))
			Expect(rec.updates).To(Equal([]string{"Hel", "Hello"}))
		})

		It("accepts a nil update callback", func() {
			msg, err := a.Consume(ctx, strings.NewReader(chunkRecords("a", "b")), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(Equal("ab"))
		})

		It("succeeds at end of stream without an explicit done", func() {
			msg, err := a.Consume(ctx, strings.NewReader(chunkRecords("only")), rec.update)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(Equal("only"))
		})

		It("produces the same message one byte at a time", func() {
			input := chunkRecords("Go ", "is ", "fün ", "👋") + "data: {\"done\":true}\n\n"

			whole := &recorder{}
			msg, err := a.Consume(ctx, strings.NewReader(input), whole.update)
			Expect(err).NotTo(HaveOccurred())

			msgBytewise, err := a.Consume(ctx, iotest.OneByteReader(strings.NewReader(input)), rec.update)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgBytewise).To(Equal(msg))
			Expect(msg).To(Equal("Go is fün 👋"))
			Expect(rec.updates).To(Equal(whole.updates))
		})

		It("is insensitive to arbitrary fragmentation", func() {
			fragments := []string{"The ", "answer ", "is ", "“42”", " — ", "日本語", "\n", "done."}
			input := chunkRecords(fragments...) + "data: {\"done\":true}\n\n"

			reference := &recorder{}
			want, err := a.Consume(ctx, strings.NewReader(input), reference.update)
			Expect(err).NotTo(HaveOccurred())
			Expect(want).To(Equal(strings.Join(fragments, "")))

			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 200; i++ {
				got := &recorder{}
				msg, err := a.Consume(ctx, &buffers{parts: randomSplit(rng, input)}, got.update)
				Expect(err).NotTo(HaveOccurred())
				Expect(msg).To(Equal(want))
				Expect(got.updates).To(Equal(reference.updates))
			}
		})

		It("reports monotonically growing prefixes", func() {
			_, err := a.Consume(ctx, strings.NewReader(chunkRecords("a", "", "bc", "d")), rec.update)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.updates).To(Equal([]string{"a", "a", "abc", "abcd"}))
			for i := 1; i < len(rec.updates); i++ {
				Expect(rec.updates[i]).To(HavePrefix(rec.updates[i-1]))
			}
		})

		It("skips malformed JSON without affecting later records", func() {
			input := "data: {\"chunk\":\"a\"}\n\n" +
				"data: {\"chunk\":\"b\n\n" +
				"data: not json\n\n" +
				"data: {\"chunk\":\"c\"}\n\n"

			msg, err := a.Consume(ctx, strings.NewReader(input), rec.update)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(Equal("ac"))
			Expect(rec.updates).To(Equal([]string{"a", "ac"}))
		})

		It("logs malformed records at debug level", func() {
			var logs bytes.Buffer
			a = chatstream.New(chatstream.WithLogger(
				logger.New(logger.WithWriter(&logs), logger.WithDebug(true)),
			))

			_, err := a.Consume(ctx, strings.NewReader("data: {oops\n\n"+chunkRecords("x")), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs.String()).To(ContainSubstring("skipping malformed stream record"))
		})

		It("skips records without a data line and empty payloads", func() {
			input := ": keep-alive\n\nevent: ping\n\ndata:\n\ndata:   \n\n" + chunkRecords("z")
			msg, err := a.Consume(ctx, strings.NewReader(input), rec.update)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(Equal("z"))
		})

		It("stops at done even when more records follow", func() {
			input := chunkRecords("kept") + "data: {\"done\":true}\n\n" + chunkRecords("ignored")
			msg, err := a.Consume(ctx, strings.NewReader(input), rec.update)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(Equal("kept"))
			Expect(rec.updates).To(Equal([]string{"kept"}))
		})

		It("stops reading the source at done", func() {
			src := &buffers{parts: []string{
				chunkRecords("a") + "data: {\"done\":true}\n\n",
				chunkRecords("b"),
				chunkRecords("c"),
			}}
			_, err := a.Consume(ctx, src, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(src.reads).To(Equal(1))
		})

		It("applies chunk before done in the same payload", func() {
			msg, err := a.Consume(ctx, strings.NewReader("data: {\"chunk\":\"last\",\"done\":true}\n\n"), rec.update)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(Equal("last"))
		})

		It("ignores an unterminated trailing record", func() {
			input := chunkRecords("a") + `data: {"chunk":"b"}`
			msg, err := a.Consume(ctx, strings.NewReader(input), rec.update)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(Equal("a"))
		})

		Context("server errors", func() {
			It("returns the server message without calling onUpdate", func() {
				_, err := a.Consume(ctx, strings.NewReader("data: {\"error\":\"bad request\"}\n\n"), rec.update)
				Expect(err).To(MatchError(chatstream.ErrServerReported))

				var se *chatstream.StreamError
				Expect(errors.As(err, &se)).To(BeTrue())
				Expect(se.Kind).To(Equal(chatstream.ServerReportedError))
				Expect(se.Message).To(Equal("bad request"))
				Expect(rec.updates).To(BeEmpty())
			})

			It("overrides fragments already delivered", func() {
				input := chunkRecords("partial ") + "data: {\"error\":\"Internal server error\"}\n\n" + chunkRecords("more")
				msg, err := a.Consume(ctx, strings.NewReader(input), rec.update)
				Expect(msg).To(BeEmpty())
				Expect(chatstream.KindOf(err)).To(Equal(chatstream.ServerReportedError))
				Expect(rec.updates).To(Equal([]string{"partial "}))
			})

			It("takes precedence over a chunk in the same payload", func() {
				_, err := a.Consume(ctx, strings.NewReader("data: {\"chunk\":\"x\",\"error\":\"boom\"}\n\n"), rec.update)
				Expect(err).To(MatchError(ContainSubstring("boom")))
				Expect(rec.updates).To(BeEmpty())
			})
		})

		Context("empty responses", func() {
			It("fails when the stream carries no fragments", func() {
				_, err := a.Consume(ctx, strings.NewReader("data: {\"done\":true}\n\n"), rec.update)
				Expect(err).To(MatchError(chatstream.ErrEmptyResponse))
			})

			It("fails on a completely empty body", func() {
				_, err := a.Consume(ctx, strings.NewReader(""), rec.update)
				Expect(errors.Is(err, chatstream.ErrEmptyResponse)).To(BeTrue())
			})

			It("fails when every fragment is empty", func() {
				_, err := a.Consume(ctx, strings.NewReader(chunkRecords("", "")), rec.update)
				Expect(err).To(MatchError(chatstream.ErrEmptyResponse))
				Expect(rec.updates).To(Equal([]string{"", ""}))
			})
		})

		Context("transport failures", func() {
			It("wraps read errors and discards partial text", func() {
				reset := errors.New("connection reset by peer")
				src := io.MultiReader(strings.NewReader(chunkRecords("partial")), iotest.ErrReader(reset))

				msg, err := a.Consume(ctx, src, rec.update)
				Expect(msg).To(BeEmpty())
				Expect(err).To(MatchError(chatstream.ErrTransportFailure))
				Expect(errors.Is(err, reset)).To(BeTrue())
				Expect(rec.updates).To(Equal([]string{"partial"}))
			})

			It("reports a cancelled context", func() {
				cancelled, cancel := context.WithCancel(ctx)
				cancel()

				_, err := a.Consume(cancelled, strings.NewReader(chunkRecords("a")), rec.update)
				Expect(chatstream.KindOf(err)).To(Equal(chatstream.TransportFailure))
				Expect(errors.Is(err, context.Canceled)).To(BeTrue())
				Expect(rec.updates).To(BeEmpty())
			})
		})

		It("tees the raw stream", func() {
			var dump bytes.Buffer
			a = chatstream.New(chatstream.WithTee(&dump), chatstream.WithReadBufferSize(5))
			input := chunkRecords("a", "b") + "data: {\"done\":true}\n\n"

			_, err := a.Consume(ctx, strings.NewReader(input), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(dump.String()).To(Equal(input))
		})
	})
})

var _ = Describe("StreamError", func() {
	It("formats each kind", func() {
		Expect((&chatstream.StreamError{Kind: chatstream.ServerReportedError, Message: "x"}).Error()).To(Equal("server error: x"))
		Expect((&chatstream.StreamError{Kind: chatstream.EmptyResponse}).Error()).To(Equal("empty response"))
		Expect(chatstream.NewTransportFailure(io.ErrUnexpectedEOF).Error()).To(Equal("transport failure: unexpected EOF"))
	})

	It("matches sentinels by kind only", func() {
		err := fmt.Errorf("asking: %w", &chatstream.StreamError{Kind: chatstream.EmptyResponse})
		Expect(errors.Is(err, chatstream.ErrEmptyResponse)).To(BeTrue())
		Expect(errors.Is(err, chatstream.ErrServerReported)).To(BeFalse())
		Expect(chatstream.KindOf(err)).To(Equal(chatstream.EmptyResponse))
		Expect(chatstream.KindOf(io.EOF)).To(BeZero())
	})
})
