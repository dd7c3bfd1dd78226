package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"ecogrid/internal/ids"
	"ecogrid/internal/scenario"
	"ecogrid/internal/sims/trophic"
)

func flatGrid() *trophic.Grid {
	return trophic.New(trophic.DefaultConfig(), scenario.Flat(ids.New(), nil))
}

var _ = Describe("Runner", func() {
	var (
		mockCtrl *gomock.Controller
		observer *MockObserver
		grid     *trophic.Grid
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		observer = NewMockObserver(mockCtrl)
		grid = flatGrid()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should observe generation 0 and every tick", func() {
		var seen []uint32
		observer.EXPECT().
			Observe(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, s trophic.Snapshot) error {
				seen = append(seen, s.Generation)
				return nil
			}).
			Times(4)

		r := New(grid, WithObservers(observer))
		Expect(r.Run(context.Background(), 3)).To(Succeed())
		Expect(seen).To(Equal([]uint32{0, 1, 2, 3}))
		Expect(grid.Generation()).To(Equal(uint32(3)))
	})

	It("should only observe the initial state for zero generations", func() {
		observer.EXPECT().Observe(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		r := New(grid, WithObservers(observer))
		Expect(r.Run(context.Background(), 0)).To(Succeed())
		Expect(grid.Generation()).To(Equal(uint32(0)))
	})

	It("should stop when an observer fails", func() {
		boom := errors.New("disk full")
		gomock.InOrder(
			observer.EXPECT().Observe(gomock.Any(), gomock.Any()).Return(nil),
			observer.EXPECT().Observe(gomock.Any(), gomock.Any()).Return(boom),
		)

		r := New(grid, WithObservers(observer))
		err := r.Run(context.Background(), 10)
		Expect(errors.Is(err, boom)).To(BeTrue())
		Expect(grid.Generation()).To(Equal(uint32(1)))
	})

	It("should stop between ticks when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		observer.EXPECT().
			Observe(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, s trophic.Snapshot) error {
				if s.Generation == 2 {
					cancel()
				}
				return nil
			}).
			Times(3)

		r := New(grid, WithObservers(observer))
		err := r.Run(ctx, 10)
		Expect(err).To(MatchError(context.Canceled))
		Expect(grid.Generation()).To(Equal(uint32(2)))
	})

	It("should give each observer its own copy of the cells", func() {
		observer.EXPECT().
			Observe(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, s trophic.Snapshot) error {
				s.Cells[0][0] = trophic.Water()
				return nil
			}).
			Times(2)

		r := New(grid, WithObservers(observer))
		Expect(r.Run(context.Background(), 1)).To(Succeed())
		Expect(grid.Cell(0, 0).IsWater()).To(BeFalse())
	})

	It("should match sequential ticks when running in parallel", func() {
		sequential := flatGrid()
		parallel := flatGrid()

		Expect(New(sequential).Run(context.Background(), 25)).To(Succeed())
		Expect(New(parallel, WithWorkers(4)).Run(context.Background(), 25)).To(Succeed())

		Expect(parallel.Cells()).To(Equal(sequential.Cells()))
	})
})

var _ = Describe("Observers", func() {
	It("should write one summary line per generation", func() {
		var buf bytes.Buffer
		r := New(flatGrid(), WithObservers(SummaryObserver(&buf)))
		Expect(r.Run(context.Background(), 2)).To(Succeed())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(3))
		Expect(lines[0]).To(HavePrefix("generation 0:"))
		Expect(lines[2]).To(HavePrefix("generation 2:"))
	})

	It("should write the terrain map", func() {
		var buf bytes.Buffer
		r := New(flatGrid(), WithObservers(MapObserver(&buf)))
		Expect(r.Run(context.Background(), 0)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("^ ^ ^"))
	})

	It("should list units per cell", func() {
		var buf bytes.Buffer
		r := New(flatGrid(), WithObservers(UnitsObserver(&buf)))
		Expect(r.Run(context.Background(), 0)).To(Succeed())
		Expect(buf.String()).To(HavePrefix("generation 0\n"))
		Expect(buf.String()).To(ContainSubstring("*1(50.00)"))
	})

	It("should write a JSON array with one grid per generation", func() {
		var buf bytes.Buffer
		evo := NewEvolutionObserver(&buf)
		r := New(flatGrid(), WithObservers(evo))
		Expect(r.Run(context.Background(), 4)).To(Succeed())
		Expect(evo.Close()).To(Succeed())

		var generations []trophic.Layout
		Expect(json.Unmarshal(buf.Bytes(), &generations)).To(Succeed())
		Expect(generations).To(HaveLen(5))
	})
})
