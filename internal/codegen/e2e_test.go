package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests pin down the emission for the canonical programs: the
// assembly is what a Venus/RARS run would execute, so the key
// instruction sequences are asserted in order (other lines may sit
// between the asserted fragments).

func assertInOrder(t *testing.T, asm string, fragments ...string) {
	t.Helper()
	pos := 0
	for _, fragment := range fragments {
		idx := strings.Index(asm[pos:], fragment)
		require.NotEqual(t, -1, idx, "missing %q after offset %d in:\n%s", fragment, pos, asm)
		pos += idx + len(fragment)
	}
}

func TestScenarioHelloExit(t *testing.T) {
	asm := compile(t, `println "Hi"; exit 0;`)

	assertInOrder(t, asm,
		`str_0: .asciiz "Hi"`,
		"main:",
		"addi sp, sp, -512",
		"la t0, str_0",
		"mv a0, t0",
		"li a7, 4",
		"ecall",
		"li a0, '\\n'",
		"li a7, 11",
		"ecall",
		"li t0, 0",
		"mv a0, t0",
		"addi sp, sp, 512",
		"li a7, 17",
		"ecall",
	)
}

func TestScenarioPrecedence(t *testing.T) {
	asm := compile(t, `x = 3; y = 4; println x + y * 2;`)

	assertInOrder(t, asm,
		"li t0, 3",
		"sw t0, 0(sp)",
		"li t0, 4",
		"sw t0, 4(sp)",
		"lw t0, 0(sp)",
		"lw t1, 4(sp)",
		"li t2, 2",
		"mul t1, t1, t2",
		"add t0, t0, t1",
		"mv a0, t0",
		"li a7, 1",
		"ecall",
	)
}

func TestScenarioCountdownLoop(t *testing.T) {
	asm := compile(t, `c = 3; while c > 0 { println c; c = c - 1; } println "done";`)

	assertInOrder(t, asm,
		"li t0, 3",
		"sw t0, 0(sp)",
		"L0:",
		"lw t0, 0(sp)",
		"li t1, 0",
		"slt t0, t1, t0",
		"beqz t0, L1",
		"lw t0, 0(sp)",
		"mv a0, t0",
		"li a7, 1",
		"lw t0, 0(sp)",
		"li t1, 1",
		"sub t0, t0, t1",
		"sw t0, 0(sp)",
		"j L0",
		"L1:",
		"la t0, str_0",
		"li a7, 4",
	)
	assert.Contains(t, asm, `str_0: .asciiz "done"`)
}

func TestScenarioBranch(t *testing.T) {
	asm := compile(t, `x = 10; if x > 5 { println "big"; } else { println "small"; }`)

	assertInOrder(t, asm,
		"li t0, 10",
		"sw t0, 0(sp)",
		"lw t0, 0(sp)",
		"li t1, 5",
		"slt t0, t1, t0",
		"beqz t0, L0",
		"la t0, str_0",
		"j L1",
		"L0:",
		"la t0, str_1",
		"L1:",
	)
	assert.Contains(t, asm, `str_0: .asciiz "big"`)
	assert.Contains(t, asm, `str_1: .asciiz "small"`)
}

func TestScenarioLogicalOperators(t *testing.T) {
	asm := compile(t, `println 1 && 0; println 1 || 0; println !5;`)

	// 1 && 0: right operand decides, result normalized to 0/1.
	assertInOrder(t, asm,
		"li t0, 1",
		"beqz t0, L0",
		"li t1, 0",
		"snez t0, t1",
		"j L1",
		"L0:",
		"li t0, 0",
		"L1:",
	)
	// 1 || 0 short-circuits to 1.
	assertInOrder(t, asm,
		"bnez t0, L2",
		"L2:",
		"li t0, 1",
		"L3:",
	)
	// !5 lowers to seqz.
	assertInOrder(t, asm,
		"li t0, 5",
		"seqz t0, t0",
	)
}

func TestScenarioInputSquare(t *testing.T) {
	asm := compile(t, `x = input(); println x * x; exit x;`)

	assertInOrder(t, asm,
		"li a7, 5",
		"ecall",
		"mv t0, a0",
		"sw t0, 0(sp)",
		"lw t0, 0(sp)",
		"lw t1, 0(sp)",
		"mul t0, t0, t1",
		"mv a0, t0",
		"li a7, 1",
		"ecall",
		"lw t0, 0(sp)",
		"mv a0, t0",
		"addi sp, sp, 512",
		"li a7, 17",
		"ecall",
	)
}
