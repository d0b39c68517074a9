package util_test

import (
	"github.com/outflux/outflux/pkg/util"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Diff", func() {
	It("returns elements missing from the second slice", func() {
		Expect(util.Diff([]string{"x", "y", "z"}, []string{"y"})).To(Equal([]string{"x", "z"}))
	})

	It("returns an empty slice when everything is present", func() {
		Expect(util.Diff([]string{"x"}, []string{"x", "y"})).To(BeEmpty())
	})
})

var _ = Describe("Includes", func() {
	It("finds present elements", func() {
		Expect(util.Includes([]string{"x", "y"}, "y")).To(BeTrue())
	})

	It("rejects absent elements", func() {
		Expect(util.Includes([]string{"x", "y"}, "z")).To(BeFalse())
	})
})
