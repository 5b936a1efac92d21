// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"path/filepath"

	"golang.org/x/tools/go/packages"
)

// key identifies a template by domain and key. The language is chosen at
// run time, so it is not part of a reference.
type key struct {
	domain string
	key    string
}

type ref struct {
	file string
	line int
}

// extractor holds the shared state and context for AST analysis within a package.
type extractor struct {
	refs        map[key][]ref
	projectRoot string
	fset        *token.FileSet
	info        *types.Info
	i18nPkgs    map[string]struct{}
}

// resolverMethods take (language, domain, key, ...).
var resolverMethods = map[string]bool{
	"Resolve": true,
	"Text":    true,
	"Has":     true,
}

// extractRefs traverses all Go source files in the given packages,
// looking for catalog lookups with constant domain and key.
func extractRefs(pkgs []*packages.Package, projectRoot string, i18nPkgPaths map[string]struct{}) map[key][]ref {
	refs := map[key][]ref{}

	for _, p := range pkgs {
		if p.TypesInfo == nil {
			continue
		}

		e := &extractor{
			refs:        refs,
			projectRoot: projectRoot,
			fset:        p.Fset,
			info:        p.TypesInfo,
			i18nPkgs:    i18nPkgPaths,
		}

		for _, f := range p.Syntax {
			ast.Inspect(f, func(n ast.Node) bool {
				switch x := n.(type) {
				case *ast.CallExpr:
					e.handleCallExpr(x)
				case *ast.CompositeLit:
					e.handleCompositeLit(x)
				}

				return true
			})
		}
	}

	return refs
}

// findI18nPkgPaths returns the package paths in this build that define
// an i18n package with both a Resolver and a Message type, however the
// package is imported or aliased.
func findI18nPkgPaths(pkgs []*packages.Package) map[string]struct{} {
	out := make(map[string]struct{})

	packages.Visit(pkgs, nil, func(p *packages.Package) {
		if p.Name != "i18n" || p.Types == nil {
			return
		}

		scope := p.Types.Scope()

		_, hasResolver := scope.Lookup("Resolver").(*types.TypeName)
		_, hasMessage := scope.Lookup("Message").(*types.TypeName)

		if hasResolver && hasMessage {
			out[p.PkgPath] = struct{}{}
		}
	})

	return out
}

// constString evaluates expr to a constant string if possible using types.Info.
// Handles string literals, const identifiers, and constant expressions like "a" + "b".
func constString(info *types.Info, expr ast.Expr) (string, bool) {
	tv, ok := info.Types[expr]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
		return "", false
	}

	return constant.StringVal(tv.Value), true
}

// isI18nType reports whether t, or the type t points to, is the named
// type name of one of the i18n packages.
func isI18nType(t types.Type, name string, i18nPkgs map[string]struct{}) bool {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}

	named, ok := t.(*types.Named)
	if !ok {
		return false
	}

	obj := named.Obj()
	if obj == nil || obj.Pkg() == nil {
		return false
	}

	if _, ok := i18nPkgs[obj.Pkg().Path()]; !ok {
		return false
	}

	return obj.Name() == name
}

// handleCompositeLit records i18n.Message{Domain: ..., Key: ...} literals.
func (e *extractor) handleCompositeLit(x *ast.CompositeLit) {
	tv, ok := e.info.Types[x]
	if !ok || tv.Type == nil || !isI18nType(tv.Type, "Message", e.i18nPkgs) {
		return
	}

	var domain, msgKey ast.Expr

	for i, elt := range x.Elts {
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			if id, ok := kv.Key.(*ast.Ident); ok {
				switch id.Name {
				case "Domain":
					domain = kv.Value
				case "Key":
					msgKey = kv.Value
				}
			}

			continue
		}

		// Positional literal: Domain, Key, Params.
		switch i {
		case 0:
			domain = elt
		case 1:
			msgKey = elt
		}
	}

	e.addPair(domain, msgKey)
}

// handleCallExpr records Resolver.Resolve/Text/Has and NewUserError calls.
func (e *extractor) handleCallExpr(x *ast.CallExpr) {
	sel, ok := x.Fun.(*ast.SelectorExpr)
	if !ok {
		return
	}

	fn, ok := e.info.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return
	}

	if _, ok := e.i18nPkgs[fn.Pkg().Path()]; !ok {
		return
	}

	sig, ok := fn.Type().(*types.Signature)
	if !ok {
		return
	}

	switch recv := sig.Recv(); {
	case recv != nil && isI18nType(recv.Type(), "Resolver", e.i18nPkgs) && resolverMethods[fn.Name()]:
		// r.Resolve(language, domain, key, ...)
	case recv == nil && fn.Name() == "NewUserError":
		// NewUserError(ctx, domain, key, params)
	default:
		return
	}

	if len(x.Args) >= 3 {
		e.addPair(x.Args[1], x.Args[2])
	}
}

func (e *extractor) addPair(domainExpr, keyExpr ast.Expr) {
	if domainExpr == nil || keyExpr == nil {
		return
	}

	domain, ok1 := constString(e.info, domainExpr)
	msgKey, ok2 := constString(e.info, keyExpr)

	if ok1 && ok2 {
		e.addRef(keyExpr.Pos(), key{domain: domain, key: msgKey})
	}
}

// addRef records a reference, normalising the file path relative to the
// computed project root.
func (e *extractor) addRef(pos token.Pos, k key) {
	p := e.fset.Position(pos)

	file := p.Filename
	if rel, err := filepath.Rel(e.projectRoot, file); err == nil {
		file = rel
	}

	file = filepath.ToSlash(file)

	e.refs[k] = append(e.refs[k], ref{file: file, line: p.Line})
}
