package cfg_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/owcet/cfg"
)

var _ = Describe("WriteDOT", func() {
	It("renders every block and edge of the collection", func() {
		col := cfg.NewCollection()
		col.Add(buildDiamond())

		var buf bytes.Buffer
		Expect(cfg.WriteDOT(&buf, col)).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("digraph owcet"))
		Expect(out).To(ContainSubstring("cluster_0"))
		Expect(out).To(ContainSubstring("->"))
	})
})
