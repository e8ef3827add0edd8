package mono

import (
	"github.com/luminalang/lumina/internal/ast"
	"github.com/luminalang/lumina/internal/config"
	"github.com/luminalang/lumina/internal/typesystem"
)

// adtInstance is one distinct concrete instantiation of a generic struct or
// enum found anywhere in the program's type annotations.
type adtInstance struct {
	typeArgs  []typesystem.Type
	constArgs []int64
}

// specializeADTs implements the struct/enum half of §4.5: for each generic
// struct/enum and each distinct instantiation recorded in a type annotation
// anywhere in the program, emit a specialized declaration (e.g. `Vec_i32_3`)
// with field types substituted and array sizes const-evaluated, then rewrite
// every NamedType reference to the generic name + concrete args into a bare
// reference to the mangled specialization.
func (m *monomorphizer) specializeADTs(prog *ast.Program) {
	generics := map[string]*ast.StructDecl{}
	enumGenerics := map[string]*ast.EnumDecl{}
	for _, stmt := range prog.Statements {
		switch d := stmt.(type) {
		case *ast.StructDecl:
			if len(d.TypeParams) > 0 {
				generics[d.Name] = d
			}
		case *ast.EnumDecl:
			if len(d.TypeParams) > 0 {
				enumGenerics[d.Name] = d
			}
		}
	}
	if len(generics) == 0 && len(enumGenerics) == 0 {
		return
	}

	instances := map[string]map[string]adtInstance{} // base name -> mangled -> instance
	collectInstances(prog, generics, enumGenerics, instances)

	var specialized []ast.Statement
	for base, byMangled := range instances {
		if sd, ok := generics[base]; ok {
			for mangled, inst := range byMangled {
				specialized = append(specialized, m.specializeStruct(sd, mangled, inst))
			}
		}
		if ed, ok := enumGenerics[base]; ok {
			for mangled, inst := range byMangled {
				specialized = append(specialized, m.specializeEnum(ed, mangled, inst))
			}
		}
	}
	prog.Statements = append(prog.Statements, specialized...)

	rewriteADTRefs(prog, generics, enumGenerics, instances)
}

// collectInstances walks every type annotation in the program looking for
// NamedType{Name: <generic base>, Args: concrete} and records the distinct
// instantiations by their mangled name.
func collectInstances(prog *ast.Program, structs map[string]*ast.StructDecl, enums map[string]*ast.EnumDecl, out map[string]map[string]adtInstance) {
	var visitType func(t ast.TypeExpr)
	visitType = func(t ast.TypeExpr) {
		nt, ok := t.(*ast.NamedType)
		if !ok {
			return
		}
		for _, a := range nt.Args {
			visitType(a)
		}
		_, isStruct := structs[nt.Name]
		_, isEnum := enums[nt.Name]
		if (!isStruct && !isEnum) || len(nt.Args) == 0 {
			return
		}
		inst := instanceFromArgs(nt.Args)
		mangled := MangleConstArgs(nt.Name, inst.typeArgs, inst.constArgs)
		if out[nt.Name] == nil {
			out[nt.Name] = map[string]adtInstance{}
		}
		out[nt.Name][mangled] = inst
	}

	var visitStmt func(s ast.Statement)
	var visitExpr func(e ast.Expression)

	visitExpr = func(e ast.Expression) {
		switch n := e.(type) {
		case nil:
		case *ast.BinaryExpr:
			visitExpr(n.Left)
			visitExpr(n.Right)
		case *ast.MemberExpr:
			visitExpr(n.Object)
		case *ast.IndexExpr:
			visitExpr(n.Object)
			visitExpr(n.Index)
		case *ast.ArrayLiteral:
			for _, el := range n.Elements {
				visitExpr(el)
			}
		case *ast.ArrayRepeatLiteral:
			visitExpr(n.Value)
			visitExpr(n.Count)
		case *ast.StructLiteral:
			for _, f := range n.Fields {
				visitExpr(f.Value)
			}
		case *ast.CallExpr:
			visitExpr(n.Callee)
			if n.Receiver != nil {
				visitExpr(n.Receiver)
			}
			for _, a := range n.Args {
				visitExpr(a)
			}
		case *ast.LambdaExpr:
			for _, p := range n.Params {
				if p.Annotation != nil {
					visitType(p.Annotation)
				}
			}
			if n.IsBlockForm {
				visitStmt(n.BlockBody)
			} else {
				visitExpr(n.ExprBody)
			}
		case *ast.TryExpr:
			visitExpr(n.Operand)
		case *ast.AsExpr:
			visitExpr(n.Operand)
			visitType(n.TargetType)
		case *ast.AwaitExpr:
			visitExpr(n.Operand)
		case *ast.MatchExpr:
			visitExpr(n.Scrutinee)
			for _, arm := range n.Arms {
				if arm.Guard != nil {
					visitExpr(arm.Guard)
				}
				visitExpr(arm.Body)
			}
		}
	}

	visitStmt = func(s ast.Statement) {
		switch n := s.(type) {
		case nil:
		case *ast.Block:
			for _, st := range n.Statements {
				visitStmt(st)
			}
		case *ast.ExprStmt:
			visitExpr(n.Expr)
		case *ast.LetStmt:
			if n.Annotation != nil {
				visitType(n.Annotation)
			}
			visitExpr(n.Value)
		case *ast.ReturnStmt:
			if n.Value != nil {
				visitExpr(n.Value)
			}
		case *ast.IfStmt:
			visitExpr(n.Cond)
			visitStmt(n.Then)
			if n.Else != nil {
				visitStmt(n.Else)
			}
		case *ast.WhileStmt:
			visitExpr(n.Cond)
			visitStmt(n.Body)
		case *ast.MatchStmt:
			visitExpr(n.Scrutinee)
			for _, arm := range n.Arms {
				if arm.Guard != nil {
					visitExpr(arm.Guard)
				}
				visitStmt(arm.Body)
			}
		case *ast.FunctionDecl:
			for _, p := range n.Params {
				if p.Annotation != nil {
					visitType(p.Annotation)
				}
			}
			if n.ReturnType != nil {
				visitType(n.ReturnType)
			}
			if n.Body != nil {
				visitStmt(n.Body)
			}
		case *ast.ImplDecl:
			for _, meth := range n.Methods {
				visitStmt(meth)
			}
		}
	}

	for _, stmt := range prog.Statements {
		visitStmt(stmt)
	}
}

// instanceFromArgs splits a NamedType's Args into typesystem.Type arguments
// and resolved const-integer arguments, per the isConstArg convention in
// internal/infer (a const arg parses as NamedType{Name:"3"}).
func instanceFromArgs(args []ast.TypeExpr) adtInstance {
	var inst adtInstance
	for _, a := range args {
		if n, ok := constArgValue(a); ok {
			inst.constArgs = append(inst.constArgs, n)
			continue
		}
		inst.typeArgs = append(inst.typeArgs, typeExprToPlainType(a))
	}
	return inst
}

func constArgValue(t ast.TypeExpr) (int64, bool) {
	nt, ok := t.(*ast.NamedType)
	if !ok || len(nt.Args) != 0 || len(nt.Name) == 0 {
		return 0, false
	}
	var v int64
	for _, c := range nt.Name {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int64(c-'0')
	}
	return v, true
}

// typeExprToPlainType converts a surface TypeExpr directly into a
// typesystem.Type without consulting inference state, for use only where the
// annotation is known to be fully concrete (a monomorphization call site
// instantiation, never a HM-inferred position).
func typeExprToPlainType(t ast.TypeExpr) typesystem.Type {
	switch tt := t.(type) {
	case *ast.NamedType:
		switch tt.Name {
		case "int", "i32", "float", "f64", "string", "bool", "void", "any", "usize", "u32":
			return typesystem.Primitive{Name: config.NormalizePrimitive(tt.Name)}
		default:
			params := make([]typesystem.Type, 0, len(tt.Args))
			for _, a := range tt.Args {
				if _, ok := constArgValue(a); ok {
					continue
				}
				params = append(params, typeExprToPlainType(a))
			}
			return typesystem.ADT{Name: tt.Name, Params: params}
		}
	default:
		return typesystem.ADT{Name: "Unknown"}
	}
}

// specializeStruct clones sd into a new StructDecl with type-param field
// references substituted and fixed-array sizes const-evaluated.
func (m *monomorphizer) specializeStruct(sd *ast.StructDecl, mangled string, inst adtInstance) *ast.StructDecl {
	subst, bindings := bindParams(sd.TypeParams, inst)
	clone := *sd
	clone.Name = mangled
	clone.TypeParams = nil
	clone.Fields = make([]ast.FieldDecl, len(sd.Fields))
	for i, f := range sd.Fields {
		clone.Fields[i] = ast.FieldDecl{Name: f.Name, Type: m.substituteArrayAware(f.Type, subst, bindings)}
	}
	return &clone
}

// specializeEnum clones ed into a new EnumDecl with type-param payload
// references substituted.
func (m *monomorphizer) specializeEnum(ed *ast.EnumDecl, mangled string, inst adtInstance) *ast.EnumDecl {
	subst, bindings := bindParams(ed.TypeParams, inst)
	clone := *ed
	clone.Name = mangled
	clone.TypeParams = nil
	clone.Variants = make([]ast.EnumVariant, len(ed.Variants))
	for i, v := range ed.Variants {
		payload := make([]ast.TypeExpr, len(v.Payload))
		for j, p := range v.Payload {
			payload[j] = m.substituteArrayAware(p, subst, bindings)
		}
		clone.Variants[i] = ast.EnumVariant{Name: v.Name, Payload: payload}
	}
	return &clone
}

// bindParams splits a generic declaration's TypeParams into a type-variable
// substitution (for non-const params) and a ConstBindings map (for const
// params), in declared order against inst's two arg lists.
func bindParams(params []ast.TypeParam, inst adtInstance) (map[string]typesystem.Type, ConstBindings) {
	subst := map[string]typesystem.Type{}
	bindings := ConstBindings{}
	ti, ci := 0, 0
	for _, tp := range params {
		if tp.Const {
			if ci < len(inst.constArgs) {
				bindings[tp.Name] = inst.constArgs[ci]
			}
			ci++
			continue
		}
		if ti < len(inst.typeArgs) {
			subst[tp.Name] = inst.typeArgs[ti]
		}
		ti++
	}
	return subst, bindings
}

// substituteArrayAware behaves like substituteTypeExpr but additionally
// const-evaluates ArrayType sizes under bindings, turning `[T; N]` into
// `[Concrete; <evaluated literal>]` for the specialized declaration.
func (m *monomorphizer) substituteArrayAware(t ast.TypeExpr, subst map[string]typesystem.Type, bindings ConstBindings) ast.TypeExpr {
	if t == nil {
		return nil
	}
	if at, ok := t.(*ast.ArrayType); ok {
		elem := m.substituteArrayAware(at.Elem, subst, bindings)
		size := at.Size
		if at.Size != nil {
			if v, ok := EvalConst(m.bag, at.Size, bindings); ok {
				size = &ast.IntLiteral{Value: v}
			}
		}
		return &ast.ArrayType{Elem: elem, Size: size}
	}
	return substituteTypeExpr(t, subst)
}

// rewriteADTRefs replaces every NamedType{Name: base, Args: concrete} in the
// program's type annotations with a bare NamedType naming the matching
// specialization, so downstream phases never see the generic name again.
func rewriteADTRefs(prog *ast.Program, structs map[string]*ast.StructDecl, enums map[string]*ast.EnumDecl, instances map[string]map[string]adtInstance) {
	var rewriteType func(t ast.TypeExpr) ast.TypeExpr
	rewriteType = func(t ast.TypeExpr) ast.TypeExpr {
		nt, ok := t.(*ast.NamedType)
		if !ok {
			return t
		}
		_, isStruct := structs[nt.Name]
		_, isEnum := enums[nt.Name]
		if (!isStruct && !isEnum) || len(nt.Args) == 0 {
			args := make([]ast.TypeExpr, len(nt.Args))
			for i, a := range nt.Args {
				args[i] = rewriteType(a)
			}
			return &ast.NamedType{Name: nt.Name, Args: args}
		}
		inst := instanceFromArgs(nt.Args)
		mangled := MangleConstArgs(nt.Name, inst.typeArgs, inst.constArgs)
		return &ast.NamedType{Name: mangled}
	}

	var rewriteStmt func(s ast.Statement)
	rewriteStmt = func(s ast.Statement) {
		switch n := s.(type) {
		case *ast.Block:
			for _, st := range n.Statements {
				rewriteStmt(st)
			}
		case *ast.LetStmt:
			if n.Annotation != nil {
				n.Annotation = rewriteType(n.Annotation)
			}
		case *ast.IfStmt:
			rewriteStmt(n.Then)
			if n.Else != nil {
				rewriteStmt(n.Else)
			}
		case *ast.WhileStmt:
			rewriteStmt(n.Body)
		case *ast.MatchStmt:
			for _, arm := range n.Arms {
				rewriteStmt(arm.Body)
			}
		case *ast.FunctionDecl:
			for i, p := range n.Params {
				if p.Annotation != nil {
					n.Params[i].Annotation = rewriteType(p.Annotation)
				}
			}
			if n.ReturnType != nil {
				n.ReturnType = rewriteType(n.ReturnType)
			}
			if n.Body != nil {
				rewriteStmt(n.Body)
			}
		case *ast.ImplDecl:
			for _, meth := range n.Methods {
				rewriteStmt(meth)
			}
		}
	}

	for _, stmt := range prog.Statements {
		switch d := stmt.(type) {
		case *ast.StructDecl:
			if len(d.TypeParams) > 0 {
				continue // the generic original is preserved verbatim (§4.5)
			}
			for i, f := range d.Fields {
				d.Fields[i] = ast.FieldDecl{Name: f.Name, Type: rewriteType(f.Type)}
			}
		case *ast.EnumDecl:
			if len(d.TypeParams) > 0 {
				continue
			}
			for i, v := range d.Variants {
				payload := make([]ast.TypeExpr, len(v.Payload))
				for j, p := range v.Payload {
					payload[j] = rewriteType(p)
				}
				d.Variants[i] = ast.EnumVariant{Name: v.Name, Payload: payload}
			}
		default:
			rewriteStmt(stmt)
		}
	}
}

