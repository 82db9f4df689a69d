package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/devassist/pkg/storage"
	"github.com/papercomputeco/devassist/pkg/storage/sqlite"
)

var _ storage.Driver = (*sqlite.Driver)(nil)

// sqliteTestTurn creates a completed turn for testing.
func sqliteTestTurn(id string, session int, started time.Time) *storage.Turn {
	return &storage.Turn{
		ID:          id,
		SessionID:   session,
		Question:    "question " + id,
		Answer:      "answer " + id,
		Outcome:     storage.OutcomeAnswered,
		StartedAt:   started,
		CompletedAt: started.Add(1500 * time.Millisecond),
	}
}

var _ = Describe("Driver", func() {
	var (
		driver *sqlite.Driver
		ctx    context.Context
		t0     time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		var err error
		driver, err = sqlite.NewDriver(ctx, ":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	Describe("NewDriver", func() {
		It("creates a driver with file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "transcript.db")

			s, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			// Verify file was created
			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("reopens an existing database", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "transcript.db")

			first, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			_, err = first.Put(ctx, sqliteTestTurn("kept", 1, t0))
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Close()).To(Succeed())

			second, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer second.Close()

			got, err := second.Get(ctx, "kept")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Question).To(Equal("question kept"))
		})
	})

	Describe("Put and Get", func() {
		It("round-trips every field", func() {
			module := 4
			turn := sqliteTestTurn("a", 3, t0)
			turn.ModuleID = &module
			turn.Outcome = storage.OutcomeServerError
			turn.Answer = ""
			turn.Error = "server error: Internal server error"

			inserted, err := driver.Put(ctx, turn)
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())

			got, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.SessionID).To(Equal(3))
			Expect(got.ModuleID).NotTo(BeNil())
			Expect(*got.ModuleID).To(Equal(4))
			Expect(got.Outcome).To(Equal(storage.OutcomeServerError))
			Expect(got.Error).To(Equal(turn.Error))
			Expect(got.StartedAt).To(BeTemporally("==", t0))
			Expect(got.Duration()).To(Equal(1500 * time.Millisecond))
		})

		It("keeps a nil module ID nil", func() {
			_, err := driver.Put(ctx, sqliteTestTurn("a", 1, t0))
			Expect(err).NotTo(HaveOccurred())

			got, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ModuleID).To(BeNil())
		})

		It("ignores duplicate IDs", func() {
			_, err := driver.Put(ctx, sqliteTestTurn("a", 1, t0))
			Expect(err).NotTo(HaveOccurred())

			inserted, err := driver.Put(ctx, sqliteTestTurn("a", 2, t0))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())
		})

		It("returns NotFoundError for unknown IDs", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(MatchError(storage.NotFoundError{ID: "missing"}))
		})
	})

	Describe("List", func() {
		It("returns one session's turns oldest first", func() {
			for _, turn := range []*storage.Turn{
				sqliteTestTurn("late", 1, t0.Add(time.Hour)),
				sqliteTestTurn("other", 2, t0),
				sqliteTestTurn("early", 1, t0),
			} {
				_, err := driver.Put(ctx, turn)
				Expect(err).NotTo(HaveOccurred())
			}

			turns, err := driver.List(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].ID).To(Equal("early"))
			Expect(turns[1].ID).To(Equal("late"))
		})
	})
})
