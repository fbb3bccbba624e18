package epidemic_test

import (
	"context"
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/episim/internal/epidemic"
)

func mustBuild(req epidemic.Request) epidemic.Params {
	p, err := epidemic.Build(req)
	Expect(err).NotTo(HaveOccurred())
	return p
}

func baseline() epidemic.Request {
	return epidemic.Request{
		Population:       1.0,
		InitialInfected:  0.01,
		TransmissionRate: 3.2,
		RecoveryRate:     0.23,
		StepSize:         0.001,
		MaxSteps:         10000,
	}
}

var _ = Describe("ComputeTrajectory", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("with the baseline parameters", func() {
		var tr *epidemic.Trajectory

		BeforeEach(func() {
			var err error
			tr, err = epidemic.ComputeTrajectory(ctx, mustBuild(baseline()))
			Expect(err).NotTo(HaveOccurred())
		})

		It("allocates maxSteps+1 entries for every sequence", func() {
			Expect(tr.Time).To(HaveLen(10001))
			Expect(tr.S).To(HaveLen(10001))
			Expect(tr.I).To(HaveLen(10001))
			Expect(tr.R).To(HaveLen(10001))
			Expect(tr.ValidLength).To(Equal(10001))
			Expect(tr.Truncated()).To(BeFalse())
		})

		It("records the initial state exactly", func() {
			population, infected := 1.0, 0.01
			Expect(tr.Time[0]).To(Equal(0))
			Expect(tr.S[0]).To(Equal(population - infected))
			Expect(tr.I[0]).To(Equal(0.01))
			Expect(tr.R[0]).To(Equal(0.0))
		})

		It("matches the hand-computed first Euler step", func() {
			Expect(tr.Time[1]).To(Equal(1))
			Expect(tr.S[1]).To(BeNumerically("~", 0.98996832, 1e-12))
			Expect(tr.I[1]).To(BeNumerically("~", 0.01002938, 1e-12))
			Expect(tr.R[1]).To(BeNumerically("~", 0.0000023, 1e-12))
		})

		It("conserves the population up to rounding", func() {
			for t := 0; t < tr.ValidLength-1; t++ {
				total := tr.S[t] + tr.I[t] + tr.R[t]
				Expect(math.Abs(total-1.0)).To(BeNumerically("<=", 1e-9), "step %d", t)
			}
			Expect(tr.Metrics["conservation_drift"]).To(BeNumerically("<=", 1e-9))
		})

		It("keeps every valid entry non-negative", func() {
			for t := 0; t < tr.ValidLength; t++ {
				Expect(tr.S[t]).To(BeNumerically(">=", 0))
				Expect(tr.I[t]).To(BeNumerically(">=", 0))
				Expect(tr.R[t]).To(BeNumerically(">=", 0))
			}
		})

		It("reports an epidemic peak inside the horizon", func() {
			Expect(tr.Metrics["peak_infected"]).To(BeNumerically(">", 0.01))
			Expect(tr.Metrics["peak_step"]).To(BeNumerically(">", 0))
			Expect(tr.Metrics["peak_step"]).To(BeNumerically("<", 10000))
			Expect(tr.Metrics["final_recovered"]).To(Equal(tr.R[10000]))
		})
	})

	It("is deterministic", func() {
		p := mustBuild(baseline())
		a, err := epidemic.ComputeTrajectory(ctx, p)
		Expect(err).NotTo(HaveOccurred())
		b, err := epidemic.ComputeTrajectory(ctx, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})

	It("gives identical results for concurrent independent computations", func() {
		p := mustBuild(baseline())
		want, err := epidemic.ComputeTrajectory(ctx, p)
		Expect(err).NotTo(HaveOccurred())

		results := make([]*epidemic.Trajectory, 8)
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				defer GinkgoRecover()
				tr, err := epidemic.ComputeTrajectory(ctx, p)
				Expect(err).NotTo(HaveOccurred())
				results[idx] = tr
			}(i)
		}
		wg.Wait()

		for _, got := range results {
			Expect(got).To(Equal(want))
		}
	})

	It("decays infections without transmission", func() {
		req := baseline()
		req.TransmissionRate = 0
		tr, err := epidemic.ComputeTrajectory(ctx, mustBuild(req))
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.ValidLength).To(Equal(10001))

		for t := 1; t < tr.ValidLength; t++ {
			Expect(tr.I[t]).To(BeNumerically("<=", tr.I[t-1]), "step %d", t)
			Expect(tr.R[t]).To(BeNumerically(">=", tr.R[t-1]), "step %d", t)
			Expect(tr.S[t]).To(Equal(tr.S[0]))
		}
	})

	It("never recovers anyone without a recovery rate", func() {
		req := baseline()
		req.RecoveryRate = 0
		tr, err := epidemic.ComputeTrajectory(ctx, mustBuild(req))
		Expect(err).NotTo(HaveOccurred())

		for t := 0; t < tr.ValidLength; t++ {
			Expect(tr.R[t]).To(Equal(0.0))
		}
	})

	It("returns the initial state alone for zero steps", func() {
		req := baseline()
		req.MaxSteps = 0
		tr, err := epidemic.ComputeTrajectory(ctx, mustBuild(req))
		Expect(err).NotTo(HaveOccurred())

		Expect(tr.Len()).To(Equal(1))
		Expect(tr.ValidLength).To(Equal(1))
		Expect(tr.Time).To(Equal([]int{0}))
		Expect(tr.S).To(Equal([]float64{req.Population - req.InitialInfected}))
		Expect(tr.I).To(Equal([]float64{req.InitialInfected}))
		Expect(tr.R).To(Equal([]float64{0}))
	})

	Context("when Euler overshoot drives a compartment negative", func() {
		var tr *epidemic.Trajectory

		BeforeEach(func() {
			req := baseline()
			req.TransmissionRate = 9.5
			req.StepSize = 0.5
			req.MaxSteps = 100
			var err error
			tr, err = epidemic.ComputeTrajectory(ctx, mustBuild(req))
			Expect(err).NotTo(HaveOccurred())
		})

		It("stops advancing and marks the valid prefix", func() {
			Expect(tr.Len()).To(Equal(101))
			Expect(tr.ValidLength).To(BeNumerically("<", 101))
			Expect(tr.ValidLength).To(BeNumerically(">=", 1))
			Expect(tr.Truncated()).To(BeTrue())
		})

		It("leaves zeros after the valid prefix", func() {
			for t := tr.ValidLength; t < tr.Len(); t++ {
				Expect(tr.Time[t]).To(Equal(t))
				Expect(tr.S[t]).To(Equal(0.0))
				Expect(tr.I[t]).To(Equal(0.0))
				Expect(tr.R[t]).To(Equal(0.0))
			}
		})

		It("offers a trimmed view of the valid prefix", func() {
			v := tr.Valid()
			Expect(v.Len()).To(Equal(tr.ValidLength))
			Expect(v.Truncated()).To(BeFalse())
			Expect(v.S[len(v.S)-1]).To(Equal(tr.S[tr.ValidLength-1]))
		})
	})

	It("rejects a zero step size before stepping", func() {
		p := mustBuild(baseline())
		p.StepSize = 0
		tr, err := epidemic.ComputeTrajectory(ctx, p)
		Expect(err).To(HaveOccurred())
		Expect(tr).To(BeNil())
	})

	It("abandons a canceled computation", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		tr, err := epidemic.ComputeTrajectory(cctx, mustBuild(baseline()))
		Expect(err).To(MatchError(context.Canceled))
		Expect(tr).To(BeNil())
	})
})
