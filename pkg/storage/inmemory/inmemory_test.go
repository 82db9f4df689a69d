package inmemory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/devassist/pkg/storage"
	"github.com/papercomputeco/devassist/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/devassist/pkg/utils/test"
)

var _ storage.Driver = (*inmemory.Driver)(nil)

var _ = Describe("Driver", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
		t0     time.Time
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		ctx = context.Background()
		t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	})

	Describe("Put", func() {
		It("inserts new turns", func() {
			inserted, err := driver.Put(ctx, testutils.NewTestTurn("a", 1, t0))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())
		})

		It("is a no-op for duplicate IDs", func() {
			_, err := driver.Put(ctx, testutils.NewTestTurn("a", 1, t0))
			Expect(err).NotTo(HaveOccurred())

			dup := testutils.NewTestTurn("a", 1, t0)
			dup.Answer = "changed"
			inserted, err := driver.Put(ctx, dup)
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())

			got, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Answer).To(Equal("answer a"))
		})

		It("rejects nil turns and empty IDs", func() {
			_, err := driver.Put(ctx, nil)
			Expect(err).To(HaveOccurred())
			_, err = driver.Put(ctx, &storage.Turn{})
			Expect(err).To(HaveOccurred())
		})

		It("stores a copy", func() {
			turn := testutils.NewTestTurn("a", 1, t0)
			_, err := driver.Put(ctx, turn)
			Expect(err).NotTo(HaveOccurred())
			turn.Answer = "mutated"

			got, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Answer).To(Equal("answer a"))
		})
	})

	Describe("Get", func() {
		It("returns NotFoundError for unknown IDs", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(MatchError(storage.NotFoundError{ID: "missing"}))
		})
	})

	Describe("List", func() {
		It("returns one session's turns oldest first", func() {
			for _, turn := range []*storage.Turn{
				testutils.NewTestTurn("late", 1, t0.Add(2*time.Minute)),
				testutils.NewTestTurn("other", 2, t0),
				testutils.NewTestTurn("early", 1, t0),
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

		It("returns nothing for unknown sessions", func() {
			turns, err := driver.List(ctx, 99)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(BeEmpty())
		})
	})

	It("closes cleanly", func() {
		Expect(driver.Close()).To(Succeed())
	})
})
