package grid

import (
	"fmt"
	"strings"

	"github.com/arloliu/gridfile/section"
)

// Flatten walks the variable tree depth-first and returns a map from
// slash-joined paths of named variables to their metadata record locations.
//
// A node contributes a path segment only when it has a name; unnamed nodes
// are walked but not recorded, so their named descendants appear under the
// nearest named ancestor. Children are materialized lazily from their
// (offset, size) pointers and released again as the walk leaves them.
func (r *Reader) Flatten() (map[string]section.OffsetSize, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	out := make(map[string]section.OffsetSize)
	if err := r.flattenInto("", out); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *Reader) flattenInto(prefix string, out map[string]section.OffsetSize) error {
	childPrefix := prefix
	if r.v.Name != "" {
		key := r.v.Name
		if prefix != "" {
			key = prefix + "/" + r.v.Name
		}
		out[key] = r.loc
		childPrefix = key
	}

	for i := range r.v.Children {
		child, err := r.Child(i)
		if err != nil {
			return err
		}

		err = child.flattenInto(childPrefix, out)
		child.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// ChildByPath resolves a slash-separated path of variable names, descending
// through unnamed intermediate nodes transparently, and returns the target
// as an independent Reader.
func (r *Reader) ChildByPath(path string) (*Reader, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	segments := strings.Split(path, "/")
	found, err := r.resolvePath(segments)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("variable %q not found", path)
	}

	return found, nil
}

// resolvePath returns a new Reader for the variable matching segments under
// r, or nil when no descendant matches. Unnamed children are searched
// without consuming a segment, matching how Flatten skips them.
func (r *Reader) resolvePath(segments []string) (*Reader, error) {
	for i := range r.v.Children {
		child, err := r.Child(i)
		if err != nil {
			return nil, err
		}

		remaining := segments
		if child.v.Name == segments[0] {
			if len(segments) == 1 {
				return child, nil
			}
			remaining = segments[1:]
		} else if child.v.Name != "" {
			child.Close()
			continue
		}

		found, err := child.resolvePath(remaining)
		child.Close()
		if err != nil {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
	}

	return nil, nil
}
