package fixtures

var x = 1
