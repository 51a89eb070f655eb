package e2e

import (
	"encoding/csv"
	"errors"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"sigs.k8s.io/yaml"

	"github.com/llm-d/snc-bounds/pkg/core"
)

func decode(out string) map[string]any {
	var doc map[string]any
	ExpectWithOffset(1, yaml.Unmarshal([]byte(out), &doc)).To(Succeed())
	return doc
}

var _ = Describe("bound command", func() {
	It("should reproduce the single server grid minimum", func() {
		res := run("bound", "--scenario", path("single.yaml"))
		Expect(res.err).NotTo(HaveOccurred())

		doc := decode(res.stdout)
		Expect(doc).To(HaveKeyWithValue("scenario", "dm1-crs"))
		Expect(doc).To(HaveKeyWithValue("topology", "single_server"))

		result, ok := doc["result"].(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(result).To(HaveKeyWithValue("heuristic", "grid"))
		Expect(result).To(HaveKeyWithValue("bound", "standard"))
		Expect(result).To(HaveKeyWithValue("feasible", true))
		Expect(result["value"]).To(BeNumerically("~", 0.1979, 2e-3))
		Expect(result["evaluations"]).To(BeNumerically("==", 119))
	})

	It("should honour the heuristic override", func() {
		res := run("bound", "--scenario", path("single.yaml"), "--heuristic", "pattern")
		Expect(res.err).NotTo(HaveOccurred())

		result := decode(res.stdout)["result"].(map[string]any)
		Expect(result).To(HaveKeyWithValue("heuristic", "pattern"))
		Expect(result["value"]).To(BeNumerically("<=", 0.2))
	})

	It("should run the enhanced bound of an overlapping tandem", func() {
		res := run("bound", "--scenario", path("overlapping.yaml"), "--bound", "enhanced", "--heuristic", "pattern")
		Expect(res.err).NotTo(HaveOccurred())

		result := decode(res.stdout)["result"].(map[string]any)
		Expect(result).To(HaveKeyWithValue("bound", "enhanced"))
		Expect(result["evaluations"]).To(BeNumerically(">", 0))
	})

	It("should reject an enhanced bound the topology does not define", func() {
		res := run("bound", "--scenario", path("single.yaml"), "--bound", "enhanced")
		Expect(errors.Is(res.err, core.ErrIllegalArgument)).To(BeTrue(), "got %v", res.err)
		Expect(res.stdout).To(BeEmpty())
	})

	It("should reject an invalid scenario", func() {
		res := run("bound", "--scenario", path("broken.yaml"))
		Expect(res.err).To(HaveOccurred())
	})

	It("should require a scenario", func() {
		res := run("bound")
		Expect(res.err).To(MatchError(ContainSubstring("scenario")))
	})

	It("should dump metrics when asked to", func() {
		metricsFile := path("bound.prom")
		res := run("bound", "--scenario", path("single.yaml"), "--metrics-file", metricsFile)
		Expect(res.err).NotTo(HaveOccurred())

		data, err := os.ReadFile(metricsFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`snc_objective_evaluations_total{heuristic="grid",outcome="feasible"}`))
		Expect(string(data)).To(ContainSubstring("snc_optimizer_runs_total"))
	})
})

var _ = Describe("montecarlo command", func() {
	It("should write one CSV row per trial and a summary", func() {
		out := path("mc.csv")
		metricsFile := path("mc.prom")
		res := run("montecarlo",
			"--scenario", path("montecarlo.yaml"),
			"--out", out,
			"--workers", "2",
			"--metrics-file", metricsFile)
		Expect(res.err).NotTo(HaveOccurred())

		f, err := os.Open(out)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(f.Close)
		records, err := csv.NewReader(f).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(4))
		Expect(records[0]).To(Equal([]string{"run_id", "trial", "lamb", "n", "rate", "pattern", "pattern_enhanced"}))
		for i, rec := range records[1:] {
			Expect(rec[1]).To(Equal([]string{"0", "1", "2"}[i]))
			Expect(rec[3]).To(Equal("1"))
		}

		summary := decode(res.stdout)["summary"].(map[string]any)
		Expect(summary).To(HaveKeyWithValue("scenario", "mc-fat-cross"))
		Expect(summary["trials"]).To(BeNumerically("==", 3))
		Expect(summary["improvements"]).To(HaveLen(1))

		data, err := os.ReadFile(metricsFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`snc_montecarlo_draws_total{outcome="accepted"} 3`))
	})

	It("should write the summary to a file", func() {
		summaryFile := path("summary.yaml")
		res := run("mc",
			"--scenario", path("montecarlo.yaml"),
			"--out", path("mc2.csv"),
			"--summary", summaryFile)
		Expect(res.err).NotTo(HaveOccurred())
		Expect(res.stdout).To(BeEmpty())

		data, err := os.ReadFile(summaryFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("mc-fat-cross"))
	})

	It("should refuse a scenario without a montecarlo section", func() {
		res := run("montecarlo", "--scenario", path("single.yaml"), "--out", path("none.csv"))
		Expect(errors.Is(res.err, core.ErrIllegalArgument)).To(BeTrue(), "got %v", res.err)
		_, err := os.Stat(path("none.csv"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})
})

var _ = Describe("catalog command", func() {
	It("should list the curve kinds and heuristics", func() {
		res := run("catalog")
		Expect(res.err).NotTo(HaveOccurred())

		doc := decode(res.stdout)
		Expect(doc["curves"]).NotTo(BeEmpty())
		Expect(res.stdout).To(ContainSubstring("kind: dm1"))
		Expect(res.stdout).To(ContainSubstring("overlapping_tandem"))
		Expect(res.stdout).To(ContainSubstring("differential_evolution"))
		Expect(res.stdout).To(ContainSubstring("backlog_prob"))
	})
})

var _ = Describe("runtime configuration", func() {
	It("should reject an unknown log level flag", func() {
		res := run("catalog", "--log-level", "loud")
		Expect(res.err).To(HaveOccurred())
	})

	It("should read SNC_ environment variables", func() {
		Expect(os.Setenv("SNC_WORKERS", "0")).To(Succeed())
		DeferCleanup(os.Unsetenv, "SNC_WORKERS")

		res := run("catalog")
		Expect(res.err).To(MatchError(ContainSubstring("workers")))
	})

	It("should read a config file", func() {
		cfg := path("runtime.yaml")
		Expect(os.WriteFile(cfg, []byte("log-level: debug\n"), 0o644)).To(Succeed())

		res := run("catalog", "--config", cfg)
		Expect(res.err).NotTo(HaveOccurred())
		Expect(strings.Contains(res.stderr, "Runtime configuration loaded")).To(BeTrue())
	})
})
