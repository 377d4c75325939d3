package services

var NewOrderID = newOrderID
