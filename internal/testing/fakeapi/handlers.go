package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/goatkit/kamdesk/internal/models"
)

const tokenCookie = "token"

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.track())
	r.NoRoute(notFound)

	api := r.Group("/api")
	api.POST("/register", s.register)
	api.POST("/login", s.login)
	api.POST("/logout", s.logout)
	api.POST("/forgot-password", s.forgotPassword)
	api.POST("/reset-password/:token", s.resetPassword)

	api.POST("/tickets", s.createTicket)
	api.GET("/tickets/track/:token", s.trackTicket)
	api.POST("/tickets/track/:token/comment", s.trackerComment)

	authed := api.Group("", s.authenticate)
	authed.GET("/user", s.currentUser)
	authed.GET("/users", s.requireAdmin, s.listUsers)
	authed.PUT("/promote/:id", s.requireAdmin, s.promote)
	authed.GET("/tickets", s.listTickets)
	authed.GET("/tickets/email/:email", s.ticketsByEmail)
	authed.GET("/tickets/:id", s.getTicket)
	authed.DELETE("/tickets/:id", s.requireSuperAdmin, s.deleteTicket)
	authed.PUT("/tickets/assign/:id", s.requireAdmin, s.assignTicket)
	authed.PUT("/tickets/status/:id", s.changeStatus)
	authed.POST("/tickets/:id/comment", s.staffComment)
	authed.GET("/metrics", s.requireAdmin, s.metrics)
	return r
}

func extractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.Split(h, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie(tokenCookie); err == nil && cookie != "" {
		return cookie
	}
	return ""
}

func (s *Server) authenticate(c *gin.Context) {
	token := extractToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
		return
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
		return
	}

	id, _ := claims["id"].(string)
	s.mu.Lock()
	a := s.accountByIDLocked(id)
	s.mu.Unlock()
	if a == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, user not found"})
		return
	}
	c.Set("user", a.user)
	c.Next()
}

func current(c *gin.Context) models.User {
	u, _ := c.Get("user")
	user, _ := u.(models.User)
	return user
}

func (s *Server) requireAdmin(c *gin.Context) {
	if u := current(c); u.Role != models.RoleAdmin && u.Role != models.RoleSuperAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
		return
	}
	c.Next()
}

func (s *Server) requireSuperAdmin(c *gin.Context) {
	if current(c).Role != models.RoleSuperAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Super admin access required"})
		return
	}
	c.Next()
}

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email and password are required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountByEmailLocked(req.Email) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		return
	}
	c.JSON(http.StatusCreated, s.addUserLocked(req.Name, req.Email, req.Password, models.RoleUser))
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}
	s.mu.Lock()
	a := s.accountByEmailLocked(req.Email)
	s.mu.Unlock()
	if a == nil || a.password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	token := s.IssueToken(a.user, s.tokenTTL)
	c.SetCookie(tokenCookie, token, int(s.tokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token})
}

func (s *Server) logout(c *gin.Context) {
	c.SetCookie(tokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	_ = c.ShouldBindJSON(&req)
	s.mu.Lock()
	a := s.accountByEmailLocked(req.Email)
	s.mu.Unlock()
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	s.IssueResetToken(req.Email)
	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	_ = c.ShouldBindJSON(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.resets[c.Param("token")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired token"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Password must be at least 6 characters"})
		return
	}
	delete(s.resets, c.Param("token"))
	s.accountByEmailLocked(email).password = req.Password
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

func (s *Server) currentUser(c *gin.Context) {
	c.JSON(http.StatusOK, current(c))
}

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.users))
	for _, a := range s.users {
		users = append(users, a.user)
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) promote(c *gin.Context) {
	var req struct {
		Role models.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role"})
		return
	}
	actor := current(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.accountByIDLocked(c.Param("id"))
	switch {
	case target == nil:
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	case target.user.Role == models.RoleSuperAdmin:
		c.JSON(http.StatusForbidden, gin.H{"message": "Cannot modify a super admin"})
		return
	case req.Role == models.RoleSuperAdmin:
		c.JSON(http.StatusForbidden, gin.H{"message": "Cannot assign super admin role"})
		return
	case actor.Role == models.RoleAdmin && req.Role != models.RoleAdmin:
		c.JSON(http.StatusForbidden, gin.H{"message": "Admins can only promote users to admin"})
		return
	}

	target.user.Role = req.Role
	var res models.PromoteResult
	res.Message = fmt.Sprintf("User role updated to %s", req.Role)
	res.User.ID = target.user.ID
	res.User.Email = target.user.Email
	res.User.Role = target.user.Role
	c.JSON(http.StatusOK, res)
}

func (s *Server) listTickets(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, cloneTicket(*t))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) ticketsByEmail(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Ticket{}
	for _, t := range s.tickets {
		if strings.EqualFold(t.Email, c.Param("email")) {
			out = append(out, cloneTicket(*t))
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getTicket(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.ticketLocked(c.Param("id"))
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Ticket not found"})
		return
	}
	c.JSON(http.StatusOK, cloneTicket(*t))
}

func (s *Server) createTicket(c *gin.Context) {
	t := models.Ticket{
		FullName:    c.PostForm("fullName"),
		Email:       c.PostForm("email"),
		Phone:       c.PostForm("phone"),
		Location:    c.PostForm("location"),
		Department:  c.PostForm("department"),
		Category:    c.PostForm("category"),
		SubCategory: c.PostForm("subCategory"),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}
	if t.Title == "" || t.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title and description are required"})
		return
	}
	if fh, err := c.FormFile("image"); err == nil {
		t.Image = "/uploads/" + fh.Filename
	}
	c.JSON(http.StatusCreated, s.AddTicket(t))
}

func (s *Server) deleteTicket(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tickets {
		if t.ID == c.Param("id") {
			s.tickets = append(s.tickets[:i], s.tickets[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "Ticket deleted successfully"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Ticket not found"})
}

func (s *Server) assignTicket(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	_ = c.ShouldBindJSON(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.ticketLocked(c.Param("id"))
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Ticket not found"})
		return
	}
	a := s.accountByIDLocked(req.UserID)
	if a == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User not found"})
		return
	}
	t.AssignedTo = &models.UserRef{ID: a.user.ID, Name: a.user.Name}
	if s.bareAssign {
		c.JSON(http.StatusOK, gin.H{"message": "Ticket assigned"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket assigned", "ticket": cloneTicket(*t)})
}

func (s *Server) changeStatus(c *gin.Context) {
	var req struct {
		Status models.Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.ticketLocked(c.Param("id"))
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Ticket not found"})
		return
	}
	t.Status = req.Status
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Ticket status updated to %s", req.Status)})
}

func (s *Server) staffComment(c *gin.Context) {
	u := current(c)
	sender := &models.CommentSender{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	s.addComment(c, func() *models.Ticket { return s.ticketLocked(c.Param("id")) }, models.SenderStaff, sender)
}

func (s *Server) trackerComment(c *gin.Context) {
	s.addComment(c, func() *models.Ticket { return s.ticketByTokenLocked(c.Param("token")) }, models.SenderUser, nil)
}

func (s *Server) addComment(c *gin.Context, find func() *models.Ticket, kind models.SenderType, sender *models.CommentSender) {
	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Message is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := find()
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Ticket not found"})
		return
	}
	s.seq++
	stored := models.Comment{
		ID:         fmt.Sprintf("c%d", s.seq),
		SenderType: kind,
		Sender:     sender,
		Message:    req.Message,
		CreatedAt:  models.FormatTimestamp(s.now()),
	}
	t.Comments = append(t.Comments, stored)

	echo := stored
	if s.omitStamp {
		echo.CreatedAt = ""
	}
	switch s.echo {
	case EchoRaw:
		c.JSON(http.StatusCreated, echo)
	case EchoTicket:
		snapshot := cloneTicket(*t)
		snapshot.Comments[len(snapshot.Comments)-1] = echo
		c.JSON(http.StatusCreated, snapshot)
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "Comment added", "comment": echo})
	}
}

// trackTicket renders the public view, which spells the creation time createdAt.
func (s *Server) trackTicket(c *gin.Context) {
	s.mu.Lock()
	t := s.ticketByTokenLocked(c.Param("token"))
	var snapshot models.Ticket
	if t != nil {
		snapshot = cloneTicket(*t)
	}
	s.mu.Unlock()

	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Ticket not found"})
		return
	}
	raw, _ := json.Marshal(snapshot)
	var body map[string]interface{}
	_ = json.Unmarshal(raw, &body)
	body["createdAt"] = body["created_at"]
	delete(body, "created_at")
	delete(body, "trackingToken")
	c.JSON(http.StatusOK, body)
}

func (s *Server) metrics(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var m models.DashboardMetrics
	m.Tickets.TicketsWithComments = []models.CommentCount{}
	byDept := newBucketCounter()
	byCat := newBucketCounter()
	for _, t := range s.tickets {
		m.Tickets.TotalTickets++
		switch t.Status {
		case models.StatusOpen:
			m.Tickets.OpenTickets++
		case models.StatusInProgress:
			m.Tickets.InProgressTickets++
		case models.StatusResolved:
			m.Tickets.ResolvedTickets++
		case models.StatusClosed:
			m.Tickets.ClosedTickets++
		}
		byDept.add(t.Department)
		byCat.add(t.Category)
		if n := len(t.Comments); n > 0 {
			m.Tickets.TicketsWithComments = append(m.Tickets.TicketsWithComments, models.CommentCount{ID: t.ID, TotalComments: n})
		}
	}
	m.Tickets.TicketsByDepartment = byDept.buckets()
	m.Tickets.TicketsByCategory = byCat.buckets()

	for _, a := range s.users {
		m.Users.TotalUsers++
		switch a.user.Role {
		case models.RoleAdmin:
			m.Users.TotalAdmins++
		case models.RoleSuperAdmin:
			m.Users.TotalSuperAdmins++
		}
	}
	c.JSON(http.StatusOK, m)
}

// bucketCounter groups like a $group stage: empty keys become a null _id.
type bucketCounter struct {
	order  []string
	counts map[string]int
}

func newBucketCounter() *bucketCounter {
	return &bucketCounter{counts: make(map[string]int)}
}

func (b *bucketCounter) add(key string) {
	if _, ok := b.counts[key]; !ok {
		b.order = append(b.order, key)
	}
	b.counts[key]++
}

func (b *bucketCounter) buckets() []models.CountBucket {
	out := make([]models.CountBucket, 0, len(b.order))
	for _, k := range b.order {
		var id interface{} = k
		if k == "" {
			id = nil
		}
		out = append(out, models.CountBucket{ID: id, Count: b.counts[k]})
	}
	return out
}
