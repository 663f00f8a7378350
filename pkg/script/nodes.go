package script

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"boxlayout/pkg/css"
	"boxlayout/pkg/text"
	"boxlayout/pkg/view"
)

// nodeContext maps view nodes to their JS proxies in both directions so the
// same node always yields the same object.
type nodeContext struct {
	vm      *goja.Runtime
	doc     *view.Document
	proxies map[*view.Node]*goja.Object
	nodes   map[*goja.Object]*view.Node
}

func newNodeContext(vm *goja.Runtime, doc *view.Document) *nodeContext {
	return &nodeContext{
		vm:      vm,
		doc:     doc,
		proxies: make(map[*view.Node]*goja.Object),
		nodes:   make(map[*goja.Object]*view.Node),
	}
}

// registerGlobals installs the document object and the tree builders.
func registerGlobals(vm *goja.Runtime, doc *view.Document) *nodeContext {
	ctx := newNodeContext(vm, doc)

	docObj := vm.NewObject()
	_ = docObj.DefineAccessorProperty("root",
		vm.ToValue(func(goja.FunctionCall) goja.Value {
			if doc.Root == nil {
				return goja.Null()
			}
			return ctx.proxy(doc.Root)
		}),
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			n := ctx.mustNode(call.Argument(0), "document.root")
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
			}
			doc.Root = n
			return goja.Undefined()
		}),
		goja.FLAG_FALSE, goja.FLAG_TRUE)
	_ = docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if doc.Root == nil {
			return goja.Null()
		}
		return ctx.proxyOrNull(doc.Root.Find(call.Argument(0).String()))
	})
	_ = docObj.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		if doc.Root == nil {
			return vm.NewArray()
		}
		return ctx.array(ctx.query(doc.Root, call.Argument(0).String(), true))
	})
	_ = docObj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		if doc.Root == nil {
			return goja.Null()
		}
		found := ctx.query(doc.Root, call.Argument(0).String(), false)
		if len(found) == 0 {
			return goja.Null()
		}
		return ctx.proxy(found[0])
	})
	_ = vm.Set("document", docObj)

	_ = vm.Set("view", ctx.viewFn)
	_ = vm.Set("text", ctx.textFn)
	_ = vm.Set("image", ctx.imageFn)
	_ = vm.Set("stylesheet", func(call goja.FunctionCall) goja.Value {
		doc.Sheets = append(doc.Sheets, call.Argument(0).String())
		return goja.Undefined()
	})
	return ctx
}

// view(tag, attrs, children) creates an element. children is a node, a
// string of words or an array of those.
func (ctx *nodeContext) viewFn(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) == 0 {
		panic(ctx.vm.NewTypeError("view: tag required"))
	}
	n := view.NewElement(call.Argument(0).String(), ctx.attrs(call.Argument(1)))
	ctx.appendAll(n, call.Argument(2))
	return ctx.proxy(n)
}

// text(str, attrs) creates a <text> element holding one leaf per word.
func (ctx *nodeContext) textFn(call goja.FunctionCall) goja.Value {
	n := view.NewElement("text", ctx.attrs(call.Argument(1)))
	ctx.appendAll(n, call.Argument(0))
	return ctx.proxy(n)
}

// image(width, height, attrs) creates a fixed-size image leaf.
func (ctx *nodeContext) imageFn(call goja.FunctionCall) goja.Value {
	w, h := call.Argument(0).ToFloat(), call.Argument(1).ToFloat()
	if !(w >= 0) || !(h >= 0) {
		panic(ctx.vm.NewTypeError("image: invalid size %v x %v", call.Argument(0), call.Argument(1)))
	}
	return ctx.proxy(view.NewImage(w, h, ctx.attrs(call.Argument(2))))
}

func (ctx *nodeContext) attrs(v goja.Value) map[string]string {
	out := make(map[string]string)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return out
	}
	obj := v.ToObject(ctx.vm)
	for _, k := range obj.Keys() {
		out[k] = obj.Get(k).String()
	}
	return out
}

func (ctx *nodeContext) appendAll(parent *view.Node, v goja.Value) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return
	}
	if s, ok := v.Export().(string); ok {
		for _, w := range text.Words(s) {
			_ = parent.AppendChild(view.NewText(w))
		}
		return
	}
	obj := v.ToObject(ctx.vm)
	if obj.ClassName() == "Array" {
		for i := range obj.Get("length").ToInteger() {
			ctx.appendAll(parent, obj.Get(strconv.FormatInt(i, 10)))
		}
		return
	}
	if err := parent.AppendChild(ctx.mustNode(v, "append")); err != nil {
		panic(ctx.vm.NewTypeError("append: %v", err))
	}
}

func (ctx *nodeContext) proxy(n *view.Node) *goja.Object {
	if obj, ok := ctx.proxies[n]; ok {
		return obj
	}
	obj := ctx.vm.NewDynamicObject(&nodeAccessor{ctx: ctx, node: n})
	ctx.proxies[n] = obj
	ctx.nodes[obj] = n
	return obj
}

func (ctx *nodeContext) proxyOrNull(n *view.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	return ctx.proxy(n)
}

func (ctx *nodeContext) array(nodes []*view.Node) goja.Value {
	items := make([]any, len(nodes))
	for i, n := range nodes {
		items[i] = ctx.proxy(n)
	}
	return ctx.vm.NewArray(items...)
}

// mustNode unwraps a proxy or throws a TypeError naming op.
func (ctx *nodeContext) mustNode(v goja.Value, op string) *view.Node {
	if obj, ok := v.(*goja.Object); ok {
		if n, ok := ctx.nodes[obj]; ok {
			return n
		}
	}
	panic(ctx.vm.NewTypeError("%s: argument is not a view", op))
}

// query returns the descendants of root matching a comma separated selector
// group, in document order.
func (ctx *nodeContext) query(root *view.Node, group string, all bool) []*view.Node {
	var sels []css.Selector
	for raw := range strings.SplitSeq(group, ",") {
		sel, err := css.ParseSelector(raw)
		if err != nil {
			panic(ctx.vm.NewTypeError("querySelector: %v", err))
		}
		sels = append(sels, sel)
	}
	var found []*view.Node
	root.Walk(func(n *view.Node) bool {
		if n == root || n.Tag == view.TextTag {
			return true
		}
		if slices.ContainsFunc(sels, func(s css.Selector) bool { return css.MatchesSelector(n, s) }) {
			found = append(found, n)
		}
		return all || len(found) == 0
	})
	return found
}
