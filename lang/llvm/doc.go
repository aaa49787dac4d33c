// Package llvm lowers lusa programs to LLVM IR using github.com/llir/llvm.
//
// The generated module defines a main function that behaves like running the
// program with the interpreter: EXIBIR and FALAR print through printf,
// PERGUNTAR reads a Number through scanf, and run-time errors print the
// interpreter's diagnostic on stderr and exit with status 1.
//
// Only Number and Boolean variables are lowered. Text is limited to literals
// written directly by EXIBIR or FALAR; anything else fails with
// [ErrUnsupported] before any IR is produced.
package llvm
