package cmd

import (
	"io/ioutil"
	"os"

	"github.com/pkg/errors"

	"github.com/outflux/outflux/pkg/xmltree"
)

// runFmt rewrites an XML configuration in the canonical pretty-printed
// layout, either in place or onto stdout.
func runFmt(filename string, write bool) error {
	xmltree.SetLogger(logger)

	tree, _, err := xmltree.Load(filename)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	pretty := xmltree.Prettify(tree)

	if write {
		if err := ioutil.WriteFile(filename, pretty, 0644); err != nil {
			return errors.Wrapf(err, "failed to rewrite %s", filename)
		}

		return nil
	}

	os.Stdout.Write(pretty)
	return nil
}

// runQuery prints the subtree at a pipe-delimited path below the root, eg.
// "OutStreams|Print". Absence is an error so scripts can test for presence
// via the exit code.
func runQuery(filename, path string) error {
	xmltree.SetLogger(logger)

	_, root, err := xmltree.Load(filename)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	node := xmltree.FindPath(root, path)
	if node == nil {
		return errors.Errorf("no node at path: %s", path)
	}

	// The node keeps the tail it had in the document, which makes no sense
	// once printed on its own.
	node.Tail = ""
	os.Stdout.Write(xmltree.Prettify(&xmltree.Tree{Root: node}))

	return nil
}
