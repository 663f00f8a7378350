package script

import (
	"slices"
	"strings"

	"github.com/dop251/goja"

	"boxlayout/pkg/view"
)

var nodeKeys = []string{"tag", "id", "className", "style", "hidden", "text", "children", "parent", "classList", "markup"}

// nodeAccessor exposes a view node to scripts.
type nodeAccessor struct {
	ctx  *nodeContext
	node *view.Node
}

func (a *nodeAccessor) Get(key string) goja.Value {
	vm, n := a.ctx.vm, a.node
	switch key {
	case "tag":
		return vm.ToValue(n.Tag)
	case "id":
		return vm.ToValue(n.Attrs["id"])
	case "className":
		return vm.ToValue(n.Attrs["class"])
	case "style":
		return vm.ToValue(n.Attrs["style"])
	case "hidden":
		_, ok := n.Attr("hidden")
		return vm.ToValue(ok)
	case "text":
		return vm.ToValue(n.TextContent())
	case "children":
		return a.ctx.array(n.Children)
	case "parent":
		return a.ctx.proxyOrNull(n.Parent)
	case "classList":
		return vm.NewDynamicObject(&classList{vm: vm, node: n})
	case "markup":
		m, err := n.Markup()
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(m)
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			v, ok := n.Attr(call.Argument(0).String())
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(v)
		})
	case "setAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			n.SetAttr(call.Argument(0).String(), call.Argument(1).String())
			return goja.Undefined()
		})
	case "removeAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			delete(n.Attrs, call.Argument(0).String())
			return goja.Undefined()
		})
	case "append":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			for _, arg := range call.Arguments {
				a.ctx.appendAll(n, arg)
			}
			return goja.Undefined()
		})
	case "appendChild":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			child := a.ctx.mustNode(call.Argument(0), "appendChild")
			if err := n.AppendChild(child); err != nil {
				panic(vm.NewTypeError("appendChild: %v", err))
			}
			return a.ctx.proxy(child)
		})
	case "insertBefore":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			child := a.ctx.mustNode(call.Argument(0), "insertBefore")
			var ref *view.Node
			if r := call.Argument(1); !goja.IsNull(r) && !goja.IsUndefined(r) {
				ref = a.ctx.mustNode(r, "insertBefore")
			}
			if err := n.InsertBefore(child, ref); err != nil {
				panic(vm.NewTypeError("insertBefore: %v", err))
			}
			return a.ctx.proxy(child)
		})
	case "removeChild":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			removed := n.RemoveChild(a.ctx.mustNode(call.Argument(0), "removeChild"))
			if removed == nil {
				panic(vm.NewTypeError("removeChild: not a child of <%s>", n.Tag))
			}
			return a.ctx.proxy(removed)
		})
	case "querySelectorAll":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return a.ctx.array(a.ctx.query(n, call.Argument(0).String(), true))
		})
	}
	return nil
}

func (a *nodeAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "id":
		a.node.SetAttr("id", val.String())
	case "className":
		a.node.SetAttr("class", val.String())
	case "style":
		a.node.SetAttr("style", val.String())
	case "hidden":
		if val.ToBoolean() {
			a.node.SetAttr("hidden", "")
		} else {
			delete(a.node.Attrs, "hidden")
		}
	default:
		return false
	}
	return true
}

func (a *nodeAccessor) Has(key string) bool {
	return slices.Contains(nodeKeys, key) || a.Get(key) != nil
}

func (a *nodeAccessor) Delete(string) bool { return false }

func (a *nodeAccessor) Keys() []string { return nodeKeys }

// classList edits the class attribute as a token list.
type classList struct {
	vm   *goja.Runtime
	node *view.Node
}

func (c *classList) tokens() []string {
	return strings.Fields(c.node.Attrs["class"])
}

func (c *classList) update(tokens []string) {
	c.node.SetAttr("class", strings.Join(tokens, " "))
}

func (c *classList) Get(key string) goja.Value {
	switch key {
	case "length":
		return c.vm.ToValue(len(c.tokens()))
	case "value":
		return c.vm.ToValue(strings.Join(c.tokens(), " "))
	case "contains":
		return c.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return c.vm.ToValue(slices.Contains(c.tokens(), call.Argument(0).String()))
		})
	case "add":
		return c.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			tokens := c.tokens()
			for _, arg := range call.Arguments {
				if t := arg.String(); !slices.Contains(tokens, t) {
					tokens = append(tokens, t)
				}
			}
			c.update(tokens)
			return goja.Undefined()
		})
	case "remove":
		return c.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			tokens := c.tokens()
			for _, arg := range call.Arguments {
				t := arg.String()
				tokens = slices.DeleteFunc(tokens, func(s string) bool { return s == t })
			}
			c.update(tokens)
			return goja.Undefined()
		})
	case "toggle":
		return c.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			t := call.Argument(0).String()
			tokens := c.tokens()
			on := !slices.Contains(tokens, t)
			if len(call.Arguments) > 1 {
				on = call.Argument(1).ToBoolean()
			}
			tokens = slices.DeleteFunc(tokens, func(s string) bool { return s == t })
			if on {
				tokens = append(tokens, t)
			}
			c.update(tokens)
			return c.vm.ToValue(on)
		})
	}
	return nil
}

func (c *classList) Set(string, goja.Value) bool { return false }
func (c *classList) Has(key string) bool          { return c.Get(key) != nil }
func (c *classList) Delete(string) bool           { return false }
func (c *classList) Keys() []string               { return []string{"length", "value"} }
