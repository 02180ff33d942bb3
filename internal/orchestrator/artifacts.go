package orchestrator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/oxhq/kernelforge/internal/backend"
	"github.com/oxhq/kernelforge/internal/backend/cppruntime"
	"github.com/oxhq/kernelforge/internal/backend/renderscript"
	"github.com/oxhq/kernelforge/internal/catalog"
	"github.com/oxhq/kernelforge/internal/hostparse"
	"github.com/oxhq/kernelforge/internal/ir"
	"github.com/oxhq/kernelforge/internal/kerrors"
)

// classArtifacts is everything compileClass produces for one class beyond
// the host-source rewrite edits: the wrapper sources, one kernel/runtime
// source per back-end, and the field name the rewritten source's selector
// snippet installs.
type classArtifacts struct {
	InterfaceSource string
	RSImplSource    string
	CPPImplSource   string
	RSKernelSource  string
	CPPUnitSource   string
	FieldName       string
	SelectorSource  string
}

// nativeFieldName is the field each wrapper implementation's generated
// body delegates through, distinct from FieldName (the host class's
// selector field, which holds whichever WrapperInterface implementation
// was chosen at runtime).
const nativeFieldName = "native"

func buildClassArtifacts(file string, className string, cat *catalog.Catalog, translator hostparse.ExprTranslator, rs, cpp *backend.Dispatch, preferred, secondary backend.Target, binds *ir.OperationsAndBinds, calls []ir.MethodCall) (*classArtifacts, *kerrors.CompilationError) {
	methods := buildMethods(cat, binds, calls)

	kernelNum := 0
	var rsKernels, cppKernels []string
	rsMethods := make([]backend.Method, len(methods))
	cppMethods := make([]backend.Method, len(methods))

	for i, bm := range methods {
		rsMethods[i] = bm.Method
		cppMethods[i] = bm.Method

		switch {
		case bm.inputBind != nil:
			elemType := elementCType(cat, bm.inputBind.Variable)
			bmp := isBitmap(bm.inputBind.Variable)
			name := inputBindMethodName(bm.inputBind.Variable.Name)
			rsKernels = append(rsKernels, renderscript.InputBindConstruction(name, elemType, bmp))
			cppKernels = append(cppKernels, cppruntime.InputBindConstruction(name, elemType, bmp))
			body := fmt.Sprintf("    return %s.%s(%s);\n", nativeFieldName, name, joinArgNames(bm.Params))
			rsMethods[i].Body, cppMethods[i].Body = body, body

		case bm.operation != nil:
			kernelNum++
			funcName := backend.KernelFuncName(kernelNum)
			translated, err := translator(bm.operation.UserFunc.Code)
			if err != nil {
				return nil, kerrors.New(kerrors.KindGenerationIO, file, bm.operation.StatementRange.Line, kerrors.ErrGenerationIO, err.Error())
			}
			translated = backend.SubstituteAccessors(translated, bm.operation.UserFunc.VariableArgument.Name)
			elemType := elementCType(cat, bm.operation.Variable)

			req := backend.EmitRequest{Op: bm.operation, FuncName: funcName, ElementCType: elemType, TranslatedFn: translated}

			rsSrc, cerr := emitOperation(rs, backend.RenderScript, file, bm.operation, req)
			if cerr != nil {
				return nil, cerr
			}
			cppSrc, cerr := emitOperation(cpp, backend.CPPRuntime, file, bm.operation, req)
			if cerr != nil {
				return nil, cerr
			}
			rsKernels = append(rsKernels, rsSrc)
			cppKernels = append(cppKernels, cppSrc)

			body := operationBody(bm.Params, bm.operation.Variable.Name, funcName, bm.ReturnType)
			rsMethods[i].Body, cppMethods[i].Body = body, body

		case bm.outputBind != nil:
			elemType := elementCType(cat, bm.outputBind.Variable)
			bmp := isBitmap(bm.outputBind.Variable)
			name := outputBindMethodName(bm.outputBind.Variable.Name)
			rsKernels = append(rsKernels, renderscript.OutputBindCopyOut(name, elemType, bmp))
			cppKernels = append(cppKernels, cppruntime.OutputBindCopyOut(name, elemType, bmp))
			body := fmt.Sprintf("    return %s.%s();\n", nativeFieldName, name)
			rsMethods[i].Body, cppMethods[i].Body = body, body

		case bm.methodCall != nil:
			body := methodCallBody(bm.methodCall, bm.ReturnType)
			rsMethods[i].Body, cppMethods[i].Body = body, body
		}
	}

	ifaceSrc, err := backend.WrapperInterfaceSource(className, rsMethods)
	if err != nil {
		return nil, kerrors.New(kerrors.KindGenerationIO, file, 0, kerrors.ErrGenerationIO, err.Error())
	}
	rsImplSrc, err := backend.WrapperImplSource(className, backend.RenderScript, rsMethods)
	if err != nil {
		return nil, kerrors.New(kerrors.KindGenerationIO, file, 0, kerrors.ErrGenerationIO, err.Error())
	}
	cppImplSrc, err := backend.WrapperImplSource(className, backend.CPPRuntime, cppMethods)
	if err != nil {
		return nil, kerrors.New(kerrors.KindGenerationIO, file, 0, kerrors.ErrGenerationIO, err.Error())
	}

	fieldName := lowerFirst(className) + "Wrapper"
	selectorSrc, err := backend.SelectorSource(className, fieldName, preferred, secondary)
	if err != nil {
		return nil, kerrors.New(kerrors.KindGenerationIO, file, 0, kerrors.ErrGenerationIO, err.Error())
	}

	return &classArtifacts{
		InterfaceSource: ifaceSrc,
		RSImplSource:    rsImplSrc,
		CPPImplSource:   cppImplSrc,
		RSKernelSource:  strings.Join(rsKernels, "\n"),
		CPPUnitSource:   strings.Join(cppKernels, "\n"),
		FieldName:       fieldName,
		SelectorSource:  selectorSrc,
	}, nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func emitOperation(d *backend.Dispatch, target backend.Target, file string, op *ir.Operation, req backend.EmitRequest) (string, *kerrors.CompilationError) {
	emitter, ok := d.Lookup(backend.OperationKey{Target: target, Kind: op.OpKind})
	if !ok {
		return "", kerrors.New(kerrors.KindUnsupportedMethod, file, op.StatementRange.Line, kerrors.ErrUnsupportedMethod, fmt.Sprintf("%s/%s", target, op.OpKind))
	}
	src, err := emitter(req)
	if err != nil {
		return "", kerrors.New(kerrors.KindGenerationIO, file, op.StatementRange.Line, kerrors.ErrGenerationIO, err.Error())
	}
	return src, nil
}

func operationBody(params []backend.Param, bindName, funcName, returnType string) string {
	call := fmt.Sprintf("%s.%s(%s", nativeFieldName, funcName, bindName)
	if len(params) > 0 {
		call += ", " + joinArgNames(params)
	}
	call += ")"
	if returnType == "void" {
		return fmt.Sprintf("    %s;\n", call)
	}
	return fmt.Sprintf("    return %s;\n", call)
}

func methodCallBody(call *ir.MethodCall, returnType string) string {
	if returnType == "void" {
		return fmt.Sprintf("    %s.%s(%s);\n", nativeFieldName, call.MethodName, call.Variable.Name)
	}
	return fmt.Sprintf("    return %s.%s(%s);\n", nativeFieldName, call.MethodName, call.Variable.Name)
}

