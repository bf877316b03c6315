package storage

// Hand-written statements for the four collections. created_at keeps
// insertion order, which doubles as the sibling-group representative
// tie-break order.

const (
	getSettingSQL = `SELECT value FROM settings WHERE key = ?`

	upsertSettingSQL = `INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	listStudentsSQL = `SELECT id, name, class_name, base_fee, sibling_group,
	phone, registration_date, notes
FROM students ORDER BY created_at, rowid`

	getStudentSQL = `SELECT id, name, class_name, base_fee, sibling_group,
	phone, registration_date, notes
FROM students WHERE id = ?`

	insertStudentSQL = `INSERT INTO students
	(id, name, class_name, base_fee, sibling_group, phone, registration_date, notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, unixepoch('subsec') * 1000)`

	updateStudentSQL = `UPDATE students SET name = ?, class_name = ?, base_fee = ?,
	sibling_group = ?, phone = ?, registration_date = ?, notes = ?
WHERE id = ?`

	deleteStudentSQL = `DELETE FROM students WHERE id = ?`

	listClassesSQL = `SELECT id, name, default_fee, schedule, time, capacity, notes
FROM classes ORDER BY created_at, rowid`

	getClassSQL = `SELECT id, name, default_fee, schedule, time, capacity, notes
FROM classes WHERE id = ?`

	insertClassSQL = `INSERT INTO classes
	(id, name, default_fee, schedule, time, capacity, notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, unixepoch('subsec') * 1000)`

	updateClassSQL = `UPDATE classes SET name = ?, default_fee = ?, schedule = ?,
	time = ?, capacity = ?, notes = ?
WHERE id = ?`

	deleteClassSQL = `DELETE FROM classes WHERE id = ?`

	listMonthPaymentsSQL = `SELECT student_id, sibling_discount, individual_discount,
	book_fee, status, payment_date, notes, total_amount
FROM payments WHERE year_month = ? ORDER BY created_at, rowid`

	deleteMonthPaymentsSQL = `DELETE FROM payments WHERE year_month = ?`

	upsertPaymentSQL = `INSERT INTO payments
	(year_month, student_id, sibling_discount, individual_discount, book_fee,
	 status, payment_date, notes, total_amount, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, unixepoch('subsec') * 1000)
ON CONFLICT(year_month, student_id) DO UPDATE SET
	sibling_discount = excluded.sibling_discount,
	individual_discount = excluded.individual_discount,
	book_fee = excluded.book_fee,
	status = excluded.status,
	payment_date = excluded.payment_date,
	notes = excluded.notes,
	total_amount = excluded.total_amount`

	listPaymentMonthsSQL = `SELECT DISTINCT year_month FROM payments ORDER BY year_month`
)
