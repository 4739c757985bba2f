package traverser

import (
	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/checker"
	"github.com/mvp-joe/tsconcepts/internal/paths"
)

// Global holds the per-file data shared by every processor.
type Global struct {
	ProjectRoot string
	File        *ast.File
	Checker     *checker.Checker
	Packages    *paths.PackageNames
}

// Context is handed to processors for the node being visited.
type Context struct {
	Node   *ast.Node
	Global *Global
	Locals *LocalContexts
}

// Prop returns the property name the current node was reached under.
func (c *Context) Prop() string {
	return c.Locals.PropAt(0)
}

// PropIndex returns the position of the current node among the siblings
// sharing its property.
func (c *Context) PropIndex() int {
	return c.Locals.PropIndexAt(0)
}

// ParentProp returns the property name the parent node was reached under.
func (c *Context) ParentProp() string {
	return c.Locals.PropAt(1)
}

// ModulePath returns the absolute path of the file being traversed.
func (c *Context) ModulePath() string {
	return c.Global.File.Path
}

type frame struct {
	node      *ast.Node
	prop      string
	propIndex int
	values    map[string]any
}

// LocalContexts is the stack of per-node frames. Values set on a frame are
// visible to the node's subtree only.
type LocalContexts struct {
	frames []*frame
}

func (lc *LocalContexts) push(node *ast.Node, prop string, index int) {
	lc.frames = append(lc.frames, &frame{node: node, prop: prop, propIndex: index})
}

func (lc *LocalContexts) pop() {
	lc.frames = lc.frames[:len(lc.frames)-1]
}

// Len returns the number of frames on the stack.
func (lc *LocalContexts) Len() int {
	return len(lc.frames)
}

// PropAt returns the property name of the frame distance levels above the
// current one, or "" outside the stack.
func (lc *LocalContexts) PropAt(distance int) string {
	i := len(lc.frames) - 1 - distance
	if i < 0 || i >= len(lc.frames) {
		return ""
	}
	return lc.frames[i].prop
}

// PropIndexAt returns the property index of the frame distance levels above
// the current one.
func (lc *LocalContexts) PropIndexAt(distance int) int {
	i := len(lc.frames) - 1 - distance
	if i < 0 || i >= len(lc.frames) {
		return 0
	}
	return lc.frames[i].propIndex
}

// NodeAt returns the node of the frame distance levels above the current one.
func (lc *LocalContexts) NodeAt(distance int) *ast.Node {
	i := len(lc.frames) - 1 - distance
	if i < 0 || i >= len(lc.frames) {
		return nil
	}
	return lc.frames[i].node
}

// Key is a typed local context key.
type Key[T any] struct {
	name string
}

// NewKey creates a key. Names must be unique across the program.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the key name.
func (k Key[T]) Name() string {
	return k.name
}

// Set stores v on the current frame.
func (k Key[T]) Set(lc *LocalContexts, v T) {
	f := lc.frames[len(lc.frames)-1]
	if f.values == nil {
		f.values = map[string]any{}
	}
	f.values[k.name] = v
}

// At returns the value stored on the frame at the given absolute index.
func (k Key[T]) At(lc *LocalContexts, index int) (T, bool) {
	var zero T
	if index < 0 || index >= len(lc.frames) {
		return zero, false
	}
	v, ok := lc.frames[index].values[k.name]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Current returns the value stored on the current frame.
func (k Key[T]) Current(lc *LocalContexts) (T, bool) {
	return k.At(lc, len(lc.frames)-1)
}

// Parent returns the value stored on the parent frame.
func (k Key[T]) Parent(lc *LocalContexts) (T, bool) {
	return k.At(lc, len(lc.frames)-2)
}

// Next returns the closest value, searching from the current frame outward,
// together with its distance (0 for the current frame, 1 for the parent...).
func (k Key[T]) Next(lc *LocalContexts) (T, int, bool) {
	for i := len(lc.frames) - 1; i >= 0; i-- {
		if v, ok := k.At(lc, i); ok {
			return v, len(lc.frames) - 1 - i, true
		}
	}
	var zero T
	return zero, -1, false
}

// Has reports whether the current frame holds a value for the key.
func (k Key[T]) Has(lc *LocalContexts) bool {
	_, ok := k.Current(lc)
	return ok
}
