package xmltree_test

import (
	"github.com/outflux/outflux/pkg/xmltree"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("NewNode", func() {
	It("sanitizes the tag", func() {
		node := xmltree.NewNode("bad tag", "")
		Expect(node.Tag).To(Equal("bad.tag"))
	})

	It("sanitizes attribute keys but keeps their order", func() {
		node := xmltree.NewNode("el", "",
			xmltree.Attr{Key: "z key", Value: "1"},
			xmltree.Attr{Key: "a", Value: "2"},
		)

		Expect(node.Attr).To(Equal([]xmltree.Attr{
			{Key: "z.key", Value: "1"},
			{Key: "a", Value: "2"},
		}))
	})

	It("sanitizes text content", func() {
		node := xmltree.NewNode("el", "with\x00null")
		Expect(node.Text).To(Equal("with?null"))
	})
})

var _ = Describe("NewTree", func() {
	It("sanitizes the root tag but attaches attributes verbatim", func() {
		tree := xmltree.NewTree("my root", xmltree.Attr{Key: "keep as-is", Value: "v"})

		Expect(tree.Root.Tag).To(Equal("my.root"))
		Expect(tree.Root.Attr).To(Equal([]xmltree.Attr{{Key: "keep as-is", Value: "v"}}))
	})
})

var _ = Describe("FindPath", func() {
	var root *xmltree.Node

	BeforeEach(func() {
		root = xmltree.NewNode("Simulation", "")
		runInfo := xmltree.NewNode("RunInfo", "")
		jobName := xmltree.NewNode("JobName", "test")
		secondJobName := xmltree.NewNode("JobName", "shadowed")

		runInfo.Append(jobName, secondJobName)
		root.Append(runInfo, xmltree.NewNode("OutStreams", ""))
	})

	It("resolves a nested path", func() {
		node := xmltree.FindPath(root, "RunInfo|JobName")
		Expect(node).NotTo(BeNil())
		Expect(node.Text).To(Equal("test"))
	})

	It("returns the first match per level only", func() {
		Expect(xmltree.FindPath(root, "RunInfo|JobName").Text).To(Equal("test"))
	})

	It("resolves a single segment", func() {
		Expect(xmltree.FindPath(root, "OutStreams")).NotTo(BeNil())
	})

	It("returns nil when any segment is missing", func() {
		Expect(xmltree.FindPath(root, "RunInfo|Missing")).To(BeNil())
		Expect(xmltree.FindPath(root, "Missing|JobName")).To(BeNil())
	})
})

var _ = Describe("Node", func() {
	Describe("Find", func() {
		It("skips comments", func() {
			node := xmltree.NewNode("parent", "")
			node.Append(&xmltree.Node{Comment: true, Text: " child "})
			node.Append(xmltree.NewNode("child", "real"))

			Expect(node.Find("child").Text).To(Equal("real"))
		})
	})

	Describe("SetAttr", func() {
		It("replaces in place, preserving order", func() {
			node := xmltree.NewNode("el", "", xmltree.Attr{Key: "a", Value: "1"}, xmltree.Attr{Key: "b", Value: "2"})
			node.SetAttr("a", "10")

			Expect(node.Attr).To(Equal([]xmltree.Attr{{Key: "a", Value: "10"}, {Key: "b", Value: "2"}}))
		})
	})
})
