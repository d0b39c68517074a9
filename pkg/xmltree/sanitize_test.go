package xmltree_test

import (
	"github.com/outflux/outflux/pkg/xmltree"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("FixText", func() {
	It("passes legal text through unchanged", func() {
		Expect(xmltree.FixText("simulation results, run 12")).To(Equal("simulation results, run 12"))
	})

	It("preserves tab, newline and carriage return", func() {
		Expect(xmltree.FixText("a\tb\nc\rd")).To(Equal("a\tb\nc\rd"))
	})

	It("replaces control characters with a placeholder", func() {
		Expect(xmltree.FixText("a\x00b\x08c\x1fd")).To(Equal("a?b?c?d"))
	})

	It("replaces the FFFE/FFFF non-characters", func() {
		Expect(xmltree.FixText("a￾b")).To(Equal("a?b"))
	})

	It("replaces invalid byte sequences", func() {
		Expect(xmltree.FixText("a\xffb")).To(Equal("a?b"))
	})
})

var _ = Describe("FixTag", func() {
	It("passes legal tags through unchanged", func() {
		Expect(xmltree.FixTag("run-info_1.2")).To(Equal("run-info_1.2"))
	})

	It("replaces illegal characters with periods", func() {
		Expect(xmltree.FixTag("has space")).To(Equal("has.space"))
		Expect(xmltree.FixTag("a|b|c")).To(Equal("a.b.c"))
	})

	It("prepends an underscore when the tag starts with a digit", func() {
		Expect(xmltree.FixTag("1tag")).To(Equal("_1tag"))
	})

	It("prepends an underscore when the tag starts with a period", func() {
		Expect(xmltree.FixTag(".hidden")).To(Equal("_.hidden"))
	})

	It("guards the reserved xml prefix, case insensitively", func() {
		Expect(xmltree.FixTag("xmlThing")).To(Equal("_xmlThing"))
		Expect(xmltree.FixTag("XML")).To(Equal("_XML"))
		Expect(xmltree.FixTag("XmLout")).To(Equal("_XmLout"))
	})

	It("allows a leading underscore", func() {
		Expect(xmltree.FixTag("_private")).To(Equal("_private"))
	})

	It("never returns an empty name", func() {
		Expect(xmltree.FixTag("")).To(Equal("_"))
	})

	It("applies both rules to hostile input", func() {
		fixed := xmltree.FixTag("2 bad tags!")
		Expect(fixed).To(Equal("_2.bad.tags."))
		Expect(fixed).To(MatchRegexp(`^[a-zA-Z_]`))
		Expect(fixed).To(MatchRegexp(`^[a-zA-Z0-9\-_.]+$`))
	})
})
