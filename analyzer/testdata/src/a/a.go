package a

type point struct{ x, y int }

func assignments(p point, xs []int, m map[string]int) {
	a := 1
	b := 2
	a = a   // want "Remove or correct this useless self-assignment."
	a = (a) // want "Remove or correct this useless self-assignment."
	a = b
	p.x = p.x       // want "Remove or correct this useless self-assignment."
	xs[0] = xs[0]   // want "Remove or correct this useless self-assignment."
	m["k"] = m["k"] // want "Remove or correct this useless self-assignment."
	a, b = b, a
	a, b = a, b // want "Remove or correct this useless self-assignment."
	a += a
	a += 0  // want "Remove or correct this useless self-assignment."
	a = *&a // want "Remove or correct this useless self-assignment."
	b *= 1  // want "Remove or correct this useless self-assignment."
	_, _ = a, b
	_ = p
}

func shadowing() {
	x := 1
	func() {
		x := x
		_ = x
	}()
}

func loop(n int) {
	for i := 0; i < n; i = i { // want "Remove or correct this useless self-assignment."
	}
}

func next() int { return 0 }

func sideEffects(m map[int]int, ch chan int) {
	m[next()] = m[next()] // want "Remove or correct this useless self-assignment."
	m[<-ch] = m[<-ch]     // want "Remove or correct this useless self-assignment."
}

func lastRead() {
	c := 1
	c = c // want "Remove or correct this useless self-assignment."
}
